package handler

import (
	"net/http"
	"strings"

	"Mansoor88-6/timesheet-portal/internal/client"
	"Mansoor88-6/timesheet-portal/internal/models"
	"Mansoor88-6/timesheet-portal/internal/session"
	"Mansoor88-6/timesheet-portal/internal/views"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MinPasswordLength matches the backend's password policy.
const MinPasswordLength = 8

// LoginForm renders the login page. Visitors already signed in go straight
// to their destination.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))

	_, st := session.FromContext(r.Context())
	if st.Authenticated(h.now()) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, views.PageLogin, "Accedi", views.LoginContent{Next: next, CSRFToken: csrf.Token(r)}, false)
}

// Login signs the visitor in with the backend and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	content := views.LoginContent{
		Email:     email,
		Next:      safeNext(r.PostFormValue("next")),
		CSRFToken: csrf.Token(r),
	}

	if email == "" || password == "" {
		content.Error = "Inserisci email e password."
		h.render(w, r, http.StatusUnprocessableEntity, views.PageLogin, "Accedi", content, false)
		return
	}

	result, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		status := http.StatusBadGateway
		content.Error = "Servizio non disponibile, riprova più tardi."
		switch {
		case client.IsAuthError(err), client.IsBadRequest(err):
			status = http.StatusUnauthorized
			content.Error = "Credenziali non valide."
		case client.IsRateLimited(err):
			status = http.StatusTooManyRequests
			content.Error = "Troppi tentativi, riprova tra qualche minuto."
		default:
			h.log(r).Error("Login failed", zap.Error(err))
		}
		h.render(w, r, status, views.PageLogin, "Accedi", content, false)
		return
	}

	if err := h.signIn(w, r, result); err != nil {
		h.log(r).Error("Failed to start session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.setFlash(w, r, views.Toast{Kind: views.ToastSuccess, Message: "Bentornato, " + result.User.DisplayName() + "!"})
	http.Redirect(w, r, content.Next, http.StatusSeeOther)
}

// signIn replaces the request's session with a fresh authenticated one.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, result *client.LoginResult) error {
	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = h.now().Add(h.opts.SessionTTL)
	}

	oldID, _ := session.FromContext(r.Context())
	st := session.State{}.Login(result.User, result.Token, expiresAt, result.MustChangePassword)
	_, err := h.sessions.Start(r.Context(), w, oldID, st)
	return err
}

// Logout ends the session locally and at the backend.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, st := session.FromContext(ctx)

	if st.Token != "" {
		if err := h.auth.Logout(ctx, st.Token); err != nil && !client.IsAuthError(err) {
			h.log(r).Warn("Backend logout failed", zap.Error(err))
		}
	}
	h.dashboard.Invalidate(ctx, st)

	if err := h.sessions.Commit(ctx, w, id, st.Logout()); err != nil {
		h.log(r).Error("Failed to end session", zap.Error(err))
	}

	h.log(r).Info("User logged out", zap.String("user_id", st.Subject()))
	h.setFlash(w, r, views.Toast{Kind: views.ToastInfo, Message: "Sei uscito."})
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// ChangePassword handles the forced password change dialog.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, st := session.FromContext(ctx)
	if !st.Authenticated(h.now()) {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	next := safeNext(r.PostFormValue("next"))
	current := r.PostFormValue("current_password")
	password := r.PostFormValue("new_password")

	fail := func(msg string) {
		h.setFlash(w, r, views.Toast{Kind: views.ToastError, Message: msg})
		http.Redirect(w, r, next, http.StatusSeeOther)
	}

	switch {
	case current == "" || password == "":
		fail("Compila tutti i campi.")
		return
	case len(password) < MinPasswordLength:
		fail("La nuova password deve avere almeno 8 caratteri.")
		return
	case password != r.PostFormValue("confirm_password"):
		fail("Le password non coincidono.")
		return
	case password == current:
		fail("La nuova password deve essere diversa da quella attuale.")
		return
	}

	if err := h.auth.ChangePassword(ctx, st.Token, current, password); err != nil {
		switch {
		case client.IsAuthError(err):
			h.endSession(w, r)
		case client.IsBadRequest(err):
			fail("Password attuale non corretta.")
		default:
			h.log(r).Error("Password change failed", zap.Error(err))
			fail("Servizio non disponibile, riprova più tardi.")
		}
		return
	}

	if err := h.sessions.Commit(ctx, w, id, st.PasswordChanged()); err != nil {
		h.log(r).Error("Failed to save session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.log(r).Info("Password changed", zap.String("user_id", st.Subject()))
	h.setFlash(w, r, views.Toast{Kind: views.ToastSuccess, Message: "Password aggiornata."})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Invitation shows an onboarding invitation.
func (h *Handler) Invitation(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	inv, status := h.lookupInvitation(r, token)
	if inv == nil {
		h.render(w, r, status, views.PageInvitation, "Invito", views.InvitationContent{Token: token, Expired: true, CSRFToken: csrf.Token(r)}, false)
		return
	}

	h.render(w, r, http.StatusOK, views.PageInvitation, "Invito", views.InvitationContent{Token: token, Invitation: inv, CSRFToken: csrf.Token(r)}, false)
}

// AcceptInvitation creates the invited account and signs it in.
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	inv, status := h.lookupInvitation(r, token)
	if inv == nil {
		h.render(w, r, status, views.PageInvitation, "Invito", views.InvitationContent{Token: token, Expired: true, CSRFToken: csrf.Token(r)}, false)
		return
	}

	content := views.InvitationContent{
		Token:      token,
		Invitation: inv,
		FullName:   strings.TrimSpace(r.PostFormValue("full_name")),
		CSRFToken:  csrf.Token(r),
	}
	password := r.PostFormValue("password")

	invalid := func(msg string) {
		content.Error = msg
		h.render(w, r, http.StatusUnprocessableEntity, views.PageInvitation, "Invito", content, false)
	}

	switch {
	case content.FullName == "":
		invalid("Inserisci nome e cognome.")
		return
	case len(password) < MinPasswordLength:
		invalid("La password deve avere almeno 8 caratteri.")
		return
	case password != r.PostFormValue("confirm_password"):
		invalid("Le password non coincidono.")
		return
	}

	result, err := h.auth.AcceptInvitation(r.Context(), token, models.AcceptInvitationRequest{
		FullName: content.FullName,
		Password: password,
	})
	if err != nil {
		switch {
		case client.IsNotFound(err):
			h.render(w, r, http.StatusGone, views.PageInvitation, "Invito", views.InvitationContent{Token: token, Expired: true, CSRFToken: csrf.Token(r)}, false)
		case client.IsBadRequest(err):
			h.log(r).Warn("Backend rejected invitation form", zap.Error(err))
			invalid("Dati non validi, controlla i campi.")
		default:
			h.log(r).Error("Failed to accept invitation", zap.Error(err))
			content.Error = "Servizio non disponibile, riprova più tardi."
			h.render(w, r, http.StatusBadGateway, views.PageInvitation, "Invito", content, false)
		}
		return
	}

	if err := h.signIn(w, r, result); err != nil {
		h.log(r).Error("Failed to start session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.log(r).Info("Invitation accepted", zap.String("user_id", result.User.ID))
	h.setFlash(w, r, views.Toast{Kind: views.ToastSuccess, Message: "Benvenuto, " + result.User.DisplayName() + "!"})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// lookupInvitation returns the invitation when it can still be accepted,
// otherwise nil and the status to render the expired page with.
func (h *Handler) lookupInvitation(r *http.Request, token string) (*models.Invitation, int) {
	if token == "" {
		return nil, http.StatusNotFound
	}

	inv, err := h.auth.GetInvitation(r.Context(), token)
	switch {
	case client.IsNotFound(err):
		return nil, http.StatusGone
	case err != nil:
		h.log(r).Error("Failed to load invitation", zap.Error(err))
		return nil, http.StatusBadGateway
	case !inv.ExpiresAt.IsZero() && !h.now().Before(inv.ExpiresAt):
		return nil, http.StatusGone
	}
	return inv, http.StatusOK
}
