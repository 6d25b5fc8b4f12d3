package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

const maxJSONBodyBytes = 1 << 20

// errUploadTooLarge is returned when a body exceeds the configured limit.
var errUploadTooLarge = errors.New("upload too large")

// errNoFile is returned when the multipart form has no file under the field.
var errNoFile = errors.New("no file uploaded")

// upload is a file received through a multipart form.
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// multipartOverhead is the body allowance for boundaries and part headers.
const multipartOverhead = 64 << 10

// readUpload reads the named multipart file field. The file may be at most
// limit bytes.
func readUpload(w http.ResponseWriter, r *http.Request, field string, limit int64) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return upload{}, errUploadTooLarge
		}
		return upload{}, fmt.Errorf("parse multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload{}, errNoFile
		}
		return upload{}, fmt.Errorf("open form file: %w", err)
	}
	defer file.Close()

	if header.Size > limit {
		return upload{}, errUploadTooLarge
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return upload{}, fmt.Errorf("read form file: %w", err)
	}

	return upload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Data:        data,
	}, nil
}

func contentType(h *multipart.FileHeader) string {
	return strings.TrimSpace(h.Header.Get("Content-Type"))
}

// isImage reports whether the declared content type is image/*.
func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// parseReceiptID parses the {id} path value.
func parseReceiptID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// flexFloat accepts a JSON number, a numeric string or null (as 0).
// Non-finite strings such as "NaN" and "Inf" are rejected.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// budgetRequest is the POST /budgets body. Missing amounts default to 0.
type budgetRequest struct {
	Category     string    `json:"category"`
	MonthlyLimit flexFloat `json:"monthly_limit"`
	Spent        flexFloat `json:"spent"`
	PriorBalance flexFloat `json:"prior_balance"`
}

func decodeBudgetRequest(w http.ResponseWriter, r *http.Request) (budgetRequest, error) {
	var req budgetRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return budgetRequest{}, fmt.Errorf("decode budget: %w", err)
	}
	return req, nil
}
