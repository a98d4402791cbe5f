package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/mediacatalog/pkg/models"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	JavascriptIncludes []rendering.JavascriptInclude
	User               *models.User
}

func GetUserFromContext(r *http.Request) *models.User {
	if result, ok := r.Context().Value("user").(*models.User); ok {
		return result
	}

	return &models.User{}
}

func GetSessionKeyFromContext(r *http.Request) string {
	if result, ok := r.Context().Value("sessionKey").(string); ok {
		return result
	}

	return ""
}
