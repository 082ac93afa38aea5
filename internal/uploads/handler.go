package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"journey-backend/internal/shared/server/middleware"
	"journey-backend/internal/shared/server/respond"
	"journey-backend/internal/shared/storage/object"
	"journey-backend/internal/shared/telemetry"
	"journey-backend/internal/shared/util"
)

const (
	MaxUploadBytes       = 10 << 20
	presignExpires       = 15 * time.Minute
	defaultRegion        = "us-east-1"
	defaultUploadsPrefix = "uploads/"
	mimeDOCX             = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedContentTypes = map[string]struct{}{
	"image/png":       {},
	"image/jpeg":      {},
	"image/webp":      {},
	"image/gif":       {},
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
	"text/markdown":   {},
	"text/vtt":        {},
	mimeDOCX:          {},
}

// Presigner issues S3 presigned PUT URLs for direct browser uploads.
type Presigner struct {
	presign *s3.PresignClient
	bucket  string
	prefix  string
}

// NewPresigner builds a Presigner for bucket. An empty region falls back to us-east-1.
func NewPresigner(ctx context.Context, region, bucket, prefix string) (*Presigner, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errConfig("UPLOADS_S3_BUCKET is required")
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = defaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errConfig("failed to load aws config")
	}
	return newPresigner(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newPresigner(client *s3.Client, bucket, prefix string) *Presigner {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultUploadsPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Presigner{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		prefix:  prefix,
	}
}

// Handler accepts file uploads into the object store.
type Handler struct {
	Store     object.ObjectStore
	Presigner *Presigner
}

// NewHandler constructs a Handler. presigner may be nil when direct uploads are not configured.
func NewHandler(store object.ObjectStore, presigner *Presigner) *Handler {
	return &Handler{Store: store, Presigner: presigner}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
	rg.POST("/uploads/presign", h.presign)
}

type uploadResponse struct {
	Key       string `json:"key"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

func (h *Handler) upload(c *gin.Context) {
	if h.Store == nil {
		respond.Error(c, http.StatusServiceUnavailable, "uploads_unavailable", "uploads not configured", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds 10 MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds 10 MB", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	var sniff [512]byte
	n, err := io.ReadFull(file, sniff[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	if n == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is empty", nil)
		return
	}
	mimeType := detectMimeType(sniff[:n], fileHeader.Filename)
	if _, ok := allowedContentTypes[mimeType]; !ok {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "file type is not allowed", gin.H{"mimeType": mimeType})
		return
	}

	userID := middleware.UserIDFromContext(c)
	body := io.MultiReader(bytes.NewReader(sniff[:n]), file)
	key, size, _, err := h.Store.Save(c.Request.Context(), userID, fileHeader.Filename, body)
	if err != nil {
		telemetry.Error("uploads.save.failed", map[string]any{
			"err":        err.Error(),
			"user_id":    userID,
			"mime_type":  mimeType,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store file", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, uploadResponse{Key: key, MimeType: mimeType, SizeBytes: size})
}

// detectMimeType sniffs the content and uses the extension to refine zip and text payloads.
func detectMimeType(head []byte, fileName string) string {
	detected := http.DetectContentType(head)
	base, _, err := mime.ParseMediaType(detected)
	if err != nil {
		base = detected
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case base == "application/zip" && ext == ".docx":
		return mimeDOCX
	case base == "text/plain" && ext == ".csv":
		return "text/csv"
	case base == "text/plain" && (ext == ".md" || ext == ".markdown"):
		return "text/markdown"
	case base == "text/plain" && ext == ".vtt":
		return "text/vtt"
	}
	return base
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	Key              string `json:"key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	if h.Presigner == nil {
		respond.Error(c, http.StatusServiceUnavailable, "uploads_unavailable", "direct uploads not configured", nil)
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > MaxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", nil)
		return
	}
	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	key := path.Join(h.Presigner.prefix, util.HashUserKey(userID), uuid.NewString()+"-"+sanitized)

	out, err := h.Presigner.presign.PresignPutObject(c.Request.Context(), presignInput(h.Presigner.bucket, key), func(opts *s3.PresignOptions) {
		opts.Expires = presignExpires
	})
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"bucket":      h.Presigner.bucket,
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        out.URL,
		Key:              key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

func presignInput(bucket, key string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
}

type errConfig string

func (e errConfig) Error() string { return string(e) }
