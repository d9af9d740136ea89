package handler

import (
	"net/http"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

func Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":  catalog.Questions(),
		"photoStep":  wizard.PhotoStep,
		"totalSteps": wizard.TotalSteps,
		"maxPhotos":  wizard.MaxPhotos,
	})
}
