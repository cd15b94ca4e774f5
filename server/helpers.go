package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/Daskott/rolodex/server/images"
	"github.com/Daskott/rolodex/server/models"
	"github.com/Daskott/rolodex/utils"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
)

const MAX_UPLOAD_SIZE = 10 << 20 // 10MB

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	}

	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

func validationErrors(errs error) []string {
	return strings.Split(errs.Error(), "\n")
}

// contactUpdateData maps a bound contact onto column updates. Image columns
// are only included when a new image was uploaded, so an edit without one
// keeps whatever image is already stored.
func contactUpdateData(contact *models.Contact) map[string]interface{} {
	data := map[string]interface{}{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"birth_date": contact.BirthDate,
		"address1":   contact.Address1,
		"address2":   contact.Address2,
		"city":       contact.City,
		"state":      contact.State,
		"zip_code":   contact.ZipCode,
		"email":      contact.Email,
		"phone":      contact.Phone,
	}

	if len(contact.ImageData) > 0 {
		data["image_data"] = contact.ImageData
		data["image_type"] = contact.ImageType
	}

	return data
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("us_state", func(fl validator.FieldLevel) bool {
		return models.IsUSStateCode(fl.Field().String())
	})
}

// currentUserID is the {uid} path var - the protected route middleware
// guarantees it matches the token subject(or an admin is calling)
func currentUserID(r *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)["uid"], 10, 64)
	return uint(id)
}

func uintPathVar(r *http.Request, name string) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	return uint(id)
}

func pagingParams(queryParams url.Values) (int, int) {
	page, _ := strconv.Atoi(queryParams.Get("page"))
	pageSize, _ := strconv.Atoi(queryParams.Get("page_size"))

	return page, pageSize
}

// decodeContactParams accepts either a plain JSON body, or a
// multipart form with the payload under 'data' & an optional
// image upload under 'image'
func decodeContactParams(r *http.Request) (*ContactParams, error) {
	params := &ContactParams{}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return params, json.NewDecoder(r.Body).Decode(params)
	}

	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(r.FormValue("data")), params); err != nil {
		return nil, err
	}

	_, fileHeader, err := r.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return nil, err
	}

	if fileHeader != nil {
		imageData, imageType, err := images.ConvertFileToBytes(fileHeader)
		if err != nil {
			return nil, err
		}

		params.ImageData = imageData
		params.ImageType = imageType
	}

	return params, nil
}

// normalizeToUTCDate drops any submitted zone offset & clock time,
// keeping the date as UTC midnight
func normalizeToUTCDate(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// client is only able to update/view their own record unless client is an admin
// who can GET/DELETE certain user resources
func canAccessUserResource(r *http.Request, userClaims *auth.RolodexTokenClaims) bool {
	allowedMethodsForAdmins := map[string]bool{"GET": true, "DELETE": true}
	deniedPathsForAdmin := []string{"/contacts", "/categories"}

	if mux.Vars(r)["uid"] == userClaims.Subject {
		return true
	}

	if !userClaims.IsAdmin {
		return false
	}

	if !allowedMethodsForAdmins[r.Method] {
		return false
	}

	for _, deniedPath := range deniedPathsForAdmin {
		if strings.Contains(r.URL.Path, deniedPath) {
			return false
		}
	}

	return true
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Rolodex server is listening on port:%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

// configDirectory retrieves the directory to store rolodex data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'rolodex' folder in home directory for prod
	configFolderName := "rolodex"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}

func contextWithDecodedJWT(ctx context.Context, decodedJWT DecodedJWT) context.Context {
	return context.WithValue(ctx, RequestContextKey("decodedJWT"), decodedJWT)
}

func decodedJWTFromContext(ctx context.Context) DecodedJWT {
	return ctx.Value(RequestContextKey("decodedJWT")).(DecodedJWT)
}
