package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Daskott/rolodex/server/mailer"
	"github.com/Daskott/rolodex/server/models"
	"gorm.io/gorm"
)

func categoriesIndex(rw http.ResponseWriter, r *http.Request) {
	page, pageSize := pagingParams(r.URL.Query())

	categories, paging, err := models.UserCategories(currentUserID(r), page, pageSize)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: categories, Paging: paging})
}

func findCategory(rw http.ResponseWriter, r *http.Request) {
	category, err := models.FindUserCategoryWithContacts(currentUserID(r), uintPathVar(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: category})
}

func createCategory(rw http.ResponseWriter, r *http.Request) {
	category := models.Category{}
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	category.UserID = currentUserID(r)
	category.ID = 0
	category.Contacts = nil
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = time.Time{}

	errs := validate.Struct(category)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: validationErrors(errs)}, http.StatusBadRequest)
		return
	}

	if err := models.CreateCategory(&category); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: category})
}

func updateCategory(rw http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	categoryID := uintPathVar(r, "id")

	category := models.Category{}
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	errs := validate.Var(category.Name, "required")
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"'name' is required"}}, http.StatusBadRequest)
		return
	}

	var lastKnownUpdate *time.Time
	if !category.UpdatedAt.IsZero() {
		lastKnownUpdate = &category.UpdatedAt
	}

	err := models.UpdateUserCategory(userID, categoryID, map[string]interface{}{"name": category.Name}, lastKnownUpdate)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	case errors.Is(err, models.ErrStaleRecord):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusConflict)
		return
	case err != nil:
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func deleteCategory(rw http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	categoryID := uintPathVar(r, "id")

	_, err := models.FindUserCategory(userID, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err = models.DeleteUserCategory(userID, categoryID); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// emailCategoryForm pre-fills a compose form addressed to every contact
// in the category, with their addresses joined into a single field
func emailCategoryForm(rw http.ResponseWriter, r *http.Request) {
	category, err := models.FindUserCategoryWithContacts(currentUserID(r), uintPathVar(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: EmailData{
		EmailAddress: categoryRecipients(category),
		EmailSubject: fmt.Sprintf("Group Message: %v", category.Name),
		GroupName:    category.Name,
	}})
}

// emailCategory sends one message covering the whole group, not one
// message per member
func emailCategory(rw http.ResponseWriter, r *http.Request) {
	_, err := models.FindUserCategory(currentUserID(r), uintPathVar(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	sendEmailData(rw, r)
}

func categoryRecipients(category *models.Category) string {
	emails := make([]string, 0, len(category.Contacts))
	for _, contact := range category.Contacts {
		emails = append(emails, contact.Email)
	}

	return mailer.JoinRecipients(emails)
}
