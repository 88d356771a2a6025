package handler

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"
	"time"
	"wastescanner/internal/config"
	"wastescanner/internal/dto"
	"wastescanner/internal/logger"
	"wastescanner/internal/middleware"
	"wastescanner/internal/observability"
	"wastescanner/internal/service/imagecodec"
	"wastescanner/internal/service/waste"
)

// Error messages returned by DetectWasteHandler.
const (
	ErrMsgNoImage      = "No image provided"
	ErrMsgInvalidImage = "Invalid image data"
	ErrMsgTooLarge     = "Image too large"
)

// WasteClassifier classifies one decoded image.
type WasteClassifier interface {
	Classify(ctx context.Context, img image.Image) (waste.Result, error)
}

// ScanPublisher receives serialized scan events for live viewers.
type ScanPublisher interface {
	Broadcast(message []byte) bool
}

// DetectWasteHandler handles POST /api/detect-waste: it decodes the image in
// the JSON body, classifies it and returns the best waste category.
func DetectWasteHandler(classifier WasteClassifier, publisher ScanPublisher, metrics *observability.Metrics, cfg *config.Config, baseLogger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		log := logger.FromContext(r.Context(), baseLogger)
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		req, err := decodeDetectRequest(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				log.Warning("Request body exceeds %d bytes", tooLarge.Limit)
				metrics.RecordRequest(observability.OutcomeInvalidInput)
				respondError(w, ErrMsgTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			log.Warning("Unreadable request body: %v", err)
			metrics.RecordRequest(observability.OutcomeInvalidInput)
			respondError(w, ErrMsgNoImage, http.StatusBadRequest)
			return
		}

		if req.Image == "" {
			metrics.RecordRequest(observability.OutcomeInvalidInput)
			respondError(w, ErrMsgNoImage, http.StatusBadRequest)
			return
		}

		decoded := imagecodec.Decoder{MaxPixels: cfg.MaxImagePixels}.DecodePayload(req.Image)
		if !decoded.OK() {
			log.Warning("Rejected image payload: %v", decoded.Err)
			metrics.RecordRequest(observability.OutcomeInvalidInput)
			respondError(w, ErrMsgInvalidImage, http.StatusBadRequest)
			return
		}

		bounds := decoded.Image.Bounds()
		log.Info("Decoded %s image %dx%d", decoded.Format, bounds.Dx(), bounds.Dy())

		result, err := classifier.Classify(r.Context(), decoded.Image)
		if err != nil {
			log.Error("Error: %v", err)
			metrics.RecordRequest(observability.OutcomeError)
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordRequest(observability.OutcomeOK)
		resp := dto.NewDetectResponse(result)
		respondJSON(w, resp, http.StatusOK)

		publishScan(publisher, middleware.GetRequestID(r.Context()), resp, log)
	}
}

// decodeDetectRequest reads the JSON body. Only the exact "image" key is
// accepted; a missing key or a non-string value leaves Image empty.
func decodeDetectRequest(body io.Reader) (dto.DetectRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return dto.DetectRequest{}, err
	}

	var req dto.DetectRequest
	if raw, ok := fields["image"]; ok {
		if err := json.Unmarshal(raw, &req.Image); err != nil {
			req.Image = ""
		}
	}
	return req, nil
}

func publishScan(publisher ScanPublisher, id string, resp dto.DetectResponse, log *logger.Logger) {
	if publisher == nil {
		return
	}

	event := dto.ScanEvent{
		ID:             id,
		Timestamp:      time.Now().UTC(),
		Type:           resp.Result.Type,
		DisposalMethod: resp.Result.DisposalMethod,
		Recyclability:  resp.Result.Recyclability,
		OriginalClass:  resp.Result.OriginalClass,
		Confidence:     resp.Confidence,
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to encode scan event: %v", err)
		return
	}
	publisher.Broadcast(message)
}
