package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/aggregator"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/storage"
)

type onboardingForm struct {
	BusinessName      string   `form:"businessName" validate:"required,max=200"`
	ContactEmail      string   `form:"contactEmail" validate:"required,email,max=254"`
	Industry          string   `form:"industry" validate:"max=100"`
	AcceptTerms       bool     `form:"acceptTerms"`
	ProductCategories []string `form:"productCategories" validate:"max=50,dive,required,max=100"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Onboarding shows (GET) or saves (POST) the merchant's onboarding record.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.deps.Auth.Authenticate(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}

	if r.Method == http.MethodGet {
		existing := any(map[string]any{})
		data, err := h.deps.Onboarding.Get(r.Context(), sess.Shop)
		switch {
		case err == nil:
			existing = data
		case !errors.Is(err, storage.ErrNotFound):
			h.logger.Error("load onboarding data failed", "shop_domain", sess.Shop, "err", err)
		}
		complete, err := h.deps.Onboarding.IsComplete(r.Context(), sess.Shop)
		if err != nil {
			h.logger.Error("check onboarding completion failed", "shop_domain", sess.Shop, "err", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"shop":         sess.Shop,
			"complete":     complete,
			"existingData": existing,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid onboarding data"})
		return
	}
	form := onboardingForm{
		BusinessName:      strings.TrimSpace(r.PostForm.Get("businessName")),
		ContactEmail:      strings.TrimSpace(r.PostForm.Get("contactEmail")),
		Industry:          strings.TrimSpace(r.PostForm.Get("industry")),
		AcceptTerms:       r.PostForm.Get("acceptTerms") == "on",
		ProductCategories: r.PostForm["productCategories"],
	}
	if err := h.validate.Struct(form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid onboarding data",
			"fields": fieldErrors(err),
		})
		return
	}

	if _, err := h.deps.Onboarding.Save(r.Context(), sess.Shop, storage.OnboardingInput{
		BusinessName:  form.BusinessName,
		ContactEmail:  form.ContactEmail,
		Industry:      form.Industry,
		AcceptedTerms: form.AcceptTerms,
	}); err != nil {
		h.logger.Error("save onboarding data failed", "shop_domain", sess.Shop, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to save onboarding data"})
		return
	}
	h.logger.Info("onboarding saved", "shop_domain", sess.Shop, "products", len(form.ProductCategories))

	if err := h.deps.Stores.CreateStore(r.Context(), aggregator.CreateStoreRequest{
		AccessToken: sess.AccessToken,
		StoreURL:    sess.Shop,
		Products:    form.ProductCategories,
	}); err != nil {
		h.logger.Error("createStore failed", "shop_domain", sess.Shop, "err", err)
	}
	http.Redirect(w, r, "/app", http.StatusFound)
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.Index(name, "["); i > 0 {
			name = name[:i]
		}
		if _, seen := out[name]; !seen {
			out[name] = fe.Tag()
		}
	}
	return out
}
