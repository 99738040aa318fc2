package handlers

import "net/http"

func (a *App) BillingCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.Billing.CreateSession(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create checkout session")
		return
	}
	a.json(w, http.StatusOK, session)
}
