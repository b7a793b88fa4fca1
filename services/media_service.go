// services/media_service.go
package services

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"parier-bet-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MediaService stores user-submitted media (avatars, bet covers) in R2
// and falls back to the local uploads dir when R2 is not configured.
type MediaService struct {
	R2Enabled bool
}

func NewMediaService(r2Enabled bool) *MediaService {
	return &MediaService{R2Enabled: r2Enabled}
}

type MediaUploadResponse struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (s *MediaService) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "Missing file", "multipart field 'file' is required")
	}
	if fileHeader.Size > maxUploadSize {
		return sendError(c, fiber.StatusBadRequest, "File too large", "maximum upload size is 10 MB")
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return sendError(c, fiber.StatusBadRequest, "Unsupported file type", contentType)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("media/%s%s", uuid.NewString(), ext)

	var url string
	if s.R2Enabled {
		url, err = utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			log.Printf("❌ [MEDIA] R2 upload failed: %v", err)
			return sendError(c, fiber.StatusInternalServerError, "Upload failed", "")
		}
	} else {
		localPath := utils.GetUploadPath(filepath.Base(key))
		if err := utils.SaveFile(fileHeader, localPath); err != nil {
			log.Printf("❌ [MEDIA] local save failed: %v", err)
			return sendError(c, fiber.StatusInternalServerError, "Upload failed", "")
		}
		url = "/" + localPath
	}

	log.Printf("✅ [MEDIA] uploaded %s (%d bytes) → %s", fileHeader.Filename, fileHeader.Size, url)
	return sendSuccess(c, "File uploaded successfully", MediaUploadResponse{
		URL:      url,
		Key:      key,
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
}
