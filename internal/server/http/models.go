package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/whisperd/internal/models"
)

type (
	ModelsResponseDTO struct {
		AvailableModels  []models.ModelStatus `json:"available_models"`
		DownloadedModels []string             `json:"downloaded_models"`
	}

	DownloadResponseDTO struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		Model      string `json:"model"`
		Downloaded bool   `json:"downloaded"`
	}

	DownloadedModelsResponseDTO struct {
		DownloadedModels []string `json:"downloaded_models"`
		TotalAvailable   int      `json:"total_available"`
	}

	RecommendationResponseDTO struct {
		UseCase     string `json:"use_case"`
		Recommended string `json:"recommended"`
	}
)

type (
	ListModelsOutput struct {
		Body ModelsResponseDTO
	}

	DownloadModelInput struct {
		Model string `path:"model" minLength:"1"`
	}

	DownloadModelOutput struct {
		Body DownloadResponseDTO
	}

	DownloadedModelsOutput struct {
		Body DownloadedModelsResponseDTO
	}

	RecommendModelInput struct {
		UseCase string `query:"use_case"`
	}

	RecommendModelOutput struct {
		Body RecommendationResponseDTO
	}
)

// ModelsHandler handles HTTP requests for model management.
type ModelsHandler struct {
	manager     *models.Manager
	device      string
	computeType string
}

// NewModelsHandler creates a new ModelsHandler instance. Downloads run
// with the configured device and compute type.
func NewModelsHandler(api huma.API, manager *models.Manager, device, computeType string) *ModelsHandler {
	h := &ModelsHandler{manager: manager, device: device, computeType: computeType}

	huma.Register(api, huma.Operation{
		OperationID:   "list-models",
		Method:        http.MethodGet,
		Path:          "/v1/models",
		Summary:       "List available models with download status",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusOK,
	}, h.handleList)

	huma.Register(api, huma.Operation{
		OperationID:   "download-model",
		Method:        http.MethodPost,
		Path:          "/v1/models/{model}/download",
		Summary:       "Download a model into the cache",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusOK,
	}, h.handleDownload)

	huma.Register(api, huma.Operation{
		OperationID:   "list-downloaded-models",
		Method:        http.MethodGet,
		Path:          "/v1/models/downloaded",
		Summary:       "List models present in the cache",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusOK,
	}, h.handleDownloaded)

	huma.Register(api, huma.Operation{
		OperationID:   "recommend-model",
		Method:        http.MethodGet,
		Path:          "/v1/models/recommend",
		Summary:       "Recommend a model for a use case",
		Tags:          []string{"models"},
		DefaultStatus: http.StatusOK,
	}, h.handleRecommend)

	return h
}

// handleList handles the list-models operation.
func (h *ModelsHandler) handleList(ctx context.Context, _ *struct{}) (*ListModelsOutput, error) {
	return &ListModelsOutput{
		Body: ModelsResponseDTO{
			AvailableModels:  h.manager.ListWithStatus(),
			DownloadedModels: h.manager.Downloaded(),
		},
	}, nil
}

// handleDownload handles the download-model operation.
func (h *ModelsHandler) handleDownload(ctx context.Context, input *DownloadModelInput) (*DownloadModelOutput, error) {
	outcome := h.manager.EnsurePresent(ctx, input.Model, h.device, h.computeType)
	if !outcome.Success {
		return nil, huma.Error400BadRequest(outcome.Message, nil)
	}

	return &DownloadModelOutput{
		Body: DownloadResponseDTO{
			Success:    true,
			Message:    outcome.Message,
			Model:      input.Model,
			Downloaded: outcome.Downloaded,
		},
	}, nil
}

// handleDownloaded handles the list-downloaded-models operation.
func (h *ModelsHandler) handleDownloaded(ctx context.Context, _ *struct{}) (*DownloadedModelsOutput, error) {
	return &DownloadedModelsOutput{
		Body: DownloadedModelsResponseDTO{
			DownloadedModels: h.manager.Downloaded(),
			TotalAvailable:   len(h.manager.List()),
		},
	}, nil
}

// handleRecommend handles the recommend-model operation.
func (h *ModelsHandler) handleRecommend(ctx context.Context, input *RecommendModelInput) (*RecommendModelOutput, error) {
	return &RecommendModelOutput{
		Body: RecommendationResponseDTO{
			UseCase:     input.UseCase,
			Recommended: h.manager.Recommend(input.UseCase),
		},
	}, nil
}
