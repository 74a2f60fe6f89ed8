package helpers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	EventsFolder = "events"
	VideosFolder = "videos"
)

// qrDataURLPrefix is the scheme a rendered ticket QR code is served under.
const qrDataURLPrefix = "data:image/png;base64,"

// TicketPayload is the JSON document encoded into a ticket's QR code.
type TicketPayload struct {
	TicketID  string `json:"ticketId"`
	EventID   string `json:"eventId"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// TicketQR builds the scannable payload for a freshly issued ticket: a random
// ticket identifier plus the event/user correlation, serialized to JSON,
// rendered as a QR PNG and returned as a data URL.
func TicketQR(eventID, userID string) (string, error) {
	payload := TicketPayload{
		TicketID:  uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode ticket payload: %v", err)
	}

	png, err := qrcode.Encode(string(raw), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %v", err)
	}

	return qrDataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[@$!%*?&]`).MatchString(password)
	return hasLower && hasUpper && hasNumber && hasSpecial
}

func StringTrim(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// UploadFiles pushes multipart uploads to Cloudinary and returns their secure
// URLs in input order.
func UploadFiles(ctx context.Context, cld *cloudinary.Cloudinary, files []*multipart.FileHeader, folder string) ([]string, error) {
	var urls []string

	for _, fh := range files {
		if fh == nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %v", fh.Filename, err)
		}

		uploadResult, err := cld.Upload.Upload(ctx, f, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"eventnest"},
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %v", fh.Filename, err)
		}

		urls = append(urls, uploadResult.SecureURL)
	}

	return urls, nil
}
