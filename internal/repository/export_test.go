package repository_test

import "github.com/parisxmas/OxiDB/OxiStory/internal/models"

func repotestSubmission() *models.Submission {
	return &models.Submission{
		Answers:   map[string]string{"nomes": "Ana e Bia", "primeiro_encontro": "Cinema"},
		Status:    models.StatusNew,
		CreatedAt: "2025-01-01T10:00:00Z",
	}
}
