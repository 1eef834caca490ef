package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	"github.com/harrison-roh/plant-disease-inference/inferapp/data"
	"github.com/harrison-roh/plant-disease-inference/inferapp/data/db"
	"github.com/harrison-roh/plant-disease-inference/inferapp/inference"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

var (
	errImageRequired   = errors.New("image field required")
	errNoFileSelected  = errors.New("no file selected")
	errJournalDisabled = errors.New("prediction journal disabled")
)

// Journal 추론 기록 저장소
type Journal interface {
	Record(ctx context.Context, e data.Entry) (db.Item, error)
	Recent(ctx context.Context, limit int) ([]db.Item, error)
}

// APIs api 핸들러
type APIs struct {
	I *inference.Inference
	// M 추론 기록, nil이면 사용하지 않음
	M Journal

	MaxUploadBytes int64
	InferTimeout   time.Duration
}

// Routes 라우터에 api 등록
func (a *APIs) Routes(r *gin.Engine) {
	r.Use(RequestID())

	r.GET("/health", a.Health)
	r.POST("/predict", a.Predict)
	r.GET("/predictions", a.ListPredictions)
}

// RequestID 요청마다 X-Request-ID 부여
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Health 서비스 상태 반환
func (a *APIs) Health(c *gin.Context) {
	cn := a.I.ClassNames()
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"model_loaded":       a.I.ModelLoaded(),
		"num_classes":        cn.Len(),
		"class_names_source": cn.Source,
		"backend":            a.I.Backend(),
	})
}

// Predict 업로드 된 잎 이미지 추론
func (a *APIs) Predict(c *gin.Context) {
	requestID := c.GetString(requestIDKey)

	if a.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.MaxUploadBytes)
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		switch {
		case isTooLarge(err):
			Error(c, http.StatusRequestEntityTooLarge,
				fmt.Errorf("image too large (max %d bytes)", a.MaxUploadBytes))
		case errors.Is(err, http.ErrMissingFile) && emptyFilename(c.Request, "image"):
			Error(c, http.StatusBadRequest, errNoFileSelected)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			Error(c, http.StatusBadRequest, errImageRequired)
		default:
			Error(c, http.StatusBadRequest, err)
		}
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		Error(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if a.InferTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.InferTimeout)
		defer cancel()
	}

	t0 := time.Now()
	record, degraded, err := a.I.Infer(ctx, image)
	elapsed := time.Since(t0)
	if err != nil {
		log.Printf("[%s] Prediction error: %s", requestID, err)
		Error(c, http.StatusInternalServerError, err)
		return
	}

	if degraded {
		log.Printf("[%s] Model not loaded, using fallback prediction", requestID)
	}
	log.Printf("[%s] %s (%d bytes): %s / %s (%.4f, %s) in %dms",
		requestID, header.Filename, len(image), record.Species, record.Disease,
		record.Confidence, record.Severity, elapsed.Milliseconds())

	if a.M != nil {
		if _, err := a.M.Record(ctx, data.Entry{
			RequestID: requestID,
			Filename:  header.Filename,
			Image:     image,
			Record:    record,
			Degraded:  degraded,
			Elapsed:   elapsed,
		}); err != nil {
			log.Printf("[%s] Fail to record prediction: %s", requestID, err)
		}
	}

	c.JSON(http.StatusOK, record)
}

// ListPredictions 최근 추론 기록 반환
func (a *APIs) ListPredictions(c *gin.Context) {
	if a.M == nil {
		Error(c, http.StatusNotFound, errJournalDisabled)
		return
	}

	limit := constants.DefaultListPredictions
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			Error(c, http.StatusBadRequest, fmt.Errorf("Invalid limit: %s", v))
			return
		}
		limit = n
	}
	if limit > constants.MaxListPredictions {
		limit = constants.MaxListPredictions
	}

	items, err := a.M.Recent(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": items,
	})
}

// emptyFilename 파일 이름 없이 올라온 part는 multipart에서 일반 값으로 분류됨
func emptyFilename(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[field]
	return ok
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}

	return strings.Contains(err.Error(), "request body too large")
}

// HTTPError api 에러 메시지
type HTTPError struct {
	Error string `json:"error"`
}

// Error api 에러를 담은 json 응답 생성
func Error(c *gin.Context, status int, err error) {
	c.JSON(status, HTTPError{
		Error: err.Error(),
	})
}
