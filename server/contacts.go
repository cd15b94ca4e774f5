package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Daskott/rolodex/server/membership"
	"github.com/Daskott/rolodex/server/models"
	"gorm.io/gorm"
)

const (
	EMAIL_SENT_MESSAGE   = "Success: Email Sent!"
	EMAIL_FAILED_MESSAGE = "Error: Email Send Failed!"
)

// ContactParams is the payload bound by the create & edit actions.
// 'Selected' carries the full category-link set to apply - nil leaves
// existing links untouched, an empty list clears them.
type ContactParams struct {
	models.Contact
	Selected *[]uint `json:"selected,omitempty"`
}

func contactsIndex(rw http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	queryParams := r.URL.Query()

	if queryParams.Get("category") != "" {
		categoryID, err := strconv.ParseUint(queryParams.Get("category"), 10, 64)
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{"'category' must be an id"}}, http.StatusBadRequest)
			return
		}

		// a category that doesn't resolve for this user is treated as
		// fatal here, not as 'not found'
		category, err := models.FindUserCategory(userID, categoryID)
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}

		contacts, err := models.ContactsInCategory(category.ID)
		if err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}

		json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: contacts})
		return
	}

	page, pageSize := pagingParams(queryParams)

	var contacts []models.Contact
	var paging *models.Paging
	var err error

	if _, ok := queryParams["search"]; ok {
		contacts, paging, err = models.SearchUserContacts(userID, queryParams.Get("search"), page, pageSize)
	} else {
		contacts, paging, err = models.UserContacts(userID, page, pageSize)
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: contacts, Paging: paging})
}

func findContact(rw http.ResponseWriter, r *http.Request) {
	contact, err := models.FindUserContact(currentUserID(r), uintPathVar(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: contact})
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	params, err := decodeContactParams(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	contact := params.Contact

	// The owner always comes from the authenticated user -
	// whatever the payload carried is dropped before validation
	contact.UserID = currentUserID(r)
	contact.ID = 0
	contact.Categories = nil
	contact.CreatedAt = time.Now().UTC()
	contact.UpdatedAt = time.Time{}

	if contact.BirthDate != nil {
		birthDate := normalizeToUTCDate(*contact.BirthDate)
		contact.BirthDate = &birthDate
	}

	errs := validate.Struct(contact)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: validationErrors(errs)}, http.StatusBadRequest)
		return
	}

	if err := models.CreateContact(&contact); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if params.Selected != nil {
		if err := membership.AddContactToCategories(*params.Selected, contact.ID); err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: contact})
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	contactID := uintPathVar(r, "id")

	params, err := decodeContactParams(r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	contact := params.Contact
	contact.UserID = userID // edit payloads can't reassign ownership

	if contact.BirthDate != nil {
		birthDate := normalizeToUTCDate(*contact.BirthDate)
		contact.BirthDate = &birthDate
	}

	errs := validate.Struct(contact)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: validationErrors(errs)}, http.StatusBadRequest)
		return
	}

	var lastKnownUpdate *time.Time
	if !params.UpdatedAt.IsZero() {
		lastKnownUpdate = &params.UpdatedAt
	}

	err = models.UpdateUserContact(userID, contactID, contactUpdateData(&contact), lastKnownUpdate)
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

	// replace the full category-link set, when a selection was supplied
	if params.Selected != nil {
		if err := membership.RemoveAllContactCategories(contactID); err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}

		if err := membership.AddContactToCategories(*params.Selected, contactID); err != nil {
			writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
			return
		}
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	contactID := uintPathVar(r, "id")

	_, err := models.FindUserContact(userID, contactID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err = models.DeleteUserContact(userID, contactID); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// emailContactForm pre-fills a compose form for a single contact
func emailContactForm(rw http.ResponseWriter, r *http.Request) {
	contact, err := models.FindUserContact(currentUserID(r), uintPathVar(r, "id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: EmailData{
		EmailAddress: contact.Email,
		FirstName:    contact.FirstName,
		LastName:     contact.LastName,
	}})
}

func emailContact(rw http.ResponseWriter, r *http.Request) {
	_, err := models.FindUserContact(currentUserID(r), uintPathVar(r, "id"))
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

// sendEmailData decodes & validates a submitted compose form and hands it
// to the mailer. Send failures surface as a generic status message - the
// underlying error is only logged.
func sendEmailData(rw http.ResponseWriter, r *http.Request) {
	emailData := EmailData{}
	if err := json.NewDecoder(r.Body).Decode(&emailData); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	errs := validate.Struct(emailData)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: validationErrors(errs)}, http.StatusBadRequest)
		return
	}

	if err := mail.SendEmail(emailData.EmailAddress, emailData.EmailSubject, emailData.EmailBody); err != nil {
		logg.Errorf("sendEmailData: %v", err)
		writeResponse(rw, ResponsePayload{Errors: []string{EMAIL_FAILED_MESSAGE}}, http.StatusBadGateway)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: map[string]string{"message": EMAIL_SENT_MESSAGE}})
}
