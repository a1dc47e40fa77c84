package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/session"
	"resumeBuilder/internal/storage"
)

var errMaliciousFile = errors.New("malicious file detected")

// VirusScanner 扫描上传内容，发现威胁时返回 errMaliciousFile。
type VirusScanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 扫描文件。
type ClamdScanner struct {
	addr string
}

func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{addr: addr}
}

func (s *ClamdScanner) Scan(r io.Reader) error {
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamd.NewClamd(s.addr).ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return errMaliciousFile
		}
	}
	return nil
}

// ImageStore 是头像上传用到的对象存储能力。
type ImageStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	ObjectURL(objectKey string) string
	DeleteObject(ctx context.Context, objectKey string) error
}

// AssetHandler 负责头像上传：扫描、类型校验、上传并写回会话。
type AssetHandler struct {
	sessions *session.Registry
	storage  ImageStore
	scanner  VirusScanner
	redis    redisRateCounter
	limits   config.UploadConfig
}

// NewAssetHandler 返回 AssetHandler 实例。scanner 为 nil 时不扫描。
func NewAssetHandler(sessions *session.Registry, store ImageStore, scanner VirusScanner, redis redisRateCounter, limits config.UploadConfig) *AssetHandler {
	return &AssetHandler{
		sessions: sessions,
		storage:  store,
		scanner:  scanner,
		redis:    redis,
		limits:   limits,
	}
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func (h *AssetHandler) mimeAllowed(contentType string) bool {
	if _, ok := imageExtensions[contentType]; !ok {
		return false
	}
	if len(h.limits.MIMEWhitelist) == 0 {
		return true
	}
	for _, allowed := range h.limits.MIMEWhitelist {
		if allowed == contentType {
			return true
		}
	}
	return false
}

// UploadProfileImage 处理 multipart 字段 file，成功后把公开地址写入 profileImageRef。
func (h *AssetHandler) UploadProfileImage(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	log := middleware.LoggerFromContext(c)
	ctx := c.Request.Context()

	if _, err := h.sessions.Get(userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.limits.MaxBytes > 0 && file.Size > h.limits.MaxBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	if h.redis != nil && h.limits.MaxPerDay > 0 {
		key := rateKey("upload", userID, time.Now(), dayWindow)
		count, err := incrWithTTL(ctx, h.redis, key, 24*time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.limits.MaxPerDay) {
			TooManyRequests(c, "daily upload limit reached")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(fileReader)
	fileReader.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}

	contentType := http.DetectContentType(data)
	if !h.mimeAllowed(contentType) {
		BadRequest(c, "unsupported image type")
		return
	}

	if h.scanner != nil {
		if err := h.scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, errMaliciousFile) {
				BadRequest(c, "malicious file detected")
				return
			}
			log.Error("scan file", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	objectKey := storage.ProfileImageKey(userID, uuid.NewString(), imageExtensions[contentType])
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		log.Error("upload file", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	// 上传期间会话可能已过期，此时对象不会再被引用。
	entry, err := h.sessions.Get(userID, c.Param("id"))
	if err != nil {
		if delErr := h.storage.DeleteObject(ctx, objectKey); delErr != nil {
			log.Warn("delete orphan image", slog.String("object_key", objectKey), slog.Any("error", delErr))
		}
		respondError(c, err)
		return
	}

	ref := h.storage.ObjectURL(objectKey)
	if err := entry.State.Apply(func(d *resume.Document) error {
		return d.UpdateProfile(resume.ProfileImageRef, ref)
	}); err != nil {
		respondError(c, err)
		return
	}

	log.Info("profile image uploaded", slog.String("object_key", objectKey))
	c.JSON(http.StatusCreated, gin.H{
		"objectKey":       objectKey,
		"profileImageRef": ref,
		"session":         newSessionResponse(entry),
	})
}
