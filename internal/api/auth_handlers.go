package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/auth"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/database"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
)

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// publicUser is the user shape returned by auth endpoints
func publicUser(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}

func (api *Api) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	errs := fieldErrors{}
	if req.Name == "" {
		errs.add("name", "The name field is required.")
	} else if len(req.Name) > 255 {
		errs.add("name", "The name may not be greater than 255 characters.")
	}
	if req.Email == "" {
		errs.add("email", "The email field is required.")
	} else if !auth.ValidateEmail(req.Email) {
		errs.add("email", "The email must be a valid email address.")
	}
	if req.Password == "" {
		errs.add("password", "The password field is required.")
	} else if !auth.ValidatePassword(req.Password) {
		errs.add("password", "The password must be at least 8 characters.")
	} else if req.Password != req.PasswordConfirmation {
		errs.add("password", "The password confirmation does not match.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := models.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	// The store's unique constraint decides the winner between concurrent
	// registrations with the same email.
	if err := api.Store.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			writeValidationErrors(w, fieldErrors{"email": {"The email has already been taken."}})
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	token, err := api.Tokens.Issue(user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":  publicUser(user),
		"token": token,
	})
}

func (api *Api) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	errs := fieldErrors{}
	if req.Email == "" {
		errs.add("email", "The email field is required.")
	} else if !auth.ValidateEmail(req.Email) {
		errs.add("email", "The email must be a valid email address.")
	}
	if req.Password == "" {
		errs.add("password", "The password field is required.")
	}
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := api.Store.GetUserByEmail(req.Email)
	if err != nil || !user.ValidatePassword(req.Password) {
		// Unknown email and wrong password are deliberately the same answer
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	token, err := api.Tokens.Issue(user.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  publicUser(user),
	})
}

// Logout revokes the presented token. Failures are reported as an opaque
// 400 with no further detail.
func (api *Api) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken, ok := auth.BearerToken(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Failed to logout.")
		return
	}

	if err := api.Tokens.Revoke(rawToken); err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to logout.")
		return
	}

	writeMessage(w, http.StatusOK, "Logged out successfully.")
}

func (api *Api) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	user, err := api.Store.GetUserByID(userID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load profile.")
		return
	}

	activity, err := api.Store.CountUserActivity(userID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load profile.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]interface{}{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"created_at": user.CreatedAt.Format("02-Jan-2006"),
			"updated_at": user.UpdatedAt.Format("02-Jan-2006"),
		},
		"post_count":     activity.PostCount,
		"comment_count":  activity.CommentCount,
		"reaction_count": activity.ReactionCount,
	})
}
