// internal/handlers/form.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unique-collection/catalog/internal/i18n"
	"github.com/unique-collection/catalog/internal/models"
	"github.com/unique-collection/catalog/internal/services"
	"github.com/unique-collection/catalog/internal/utils"
)

const (
	galleryField = "gallery"
	// multipartMemory is the part of a multipart body held in memory before
	// gin spills file parts to disk.
	multipartMemory = 8 << 20
)

// FileError is a rejection at the upload boundary: too many files, a file
// that is too large or one that is not an image.
type FileError struct {
	Message string
}

func (e *FileError) Error() string {
	return e.Message
}

// ProductForm holds the raw values of an add or edit submission. It is
// echoed back unchanged when the submission is rejected.
type ProductForm struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              string   `json:"price"`
	Category           string   `json:"category"`
	Sizes              []string `json:"sizes"`
	DiscountAmount     string   `json:"discountAmount"`
	DiscountPercentage string   `json:"discountPercentage"`
}

// FormFromProduct renders stored values the way the form submits them.
func FormFromProduct(p *models.Product) ProductForm {
	return ProductForm{
		Title:              p.Title,
		Description:        p.Description,
		Price:              formatNumber(p.Price),
		Category:           string(p.Category),
		Sizes:              append([]string(nil), p.Sizes...),
		DiscountAmount:     formatNumber(p.Discount.Amount),
		DiscountPercentage: formatNumber(p.Discount.Percentage),
	}
}

// ParseProductForm reads the submitted fields and gallery files. File
// constraints are enforced here and reported as *FileError.
func ParseProductForm(c *gin.Context, options services.UploadOptions) (ProductForm, []services.ImageUpload, error) {
	if options.MaxSize > 0 && options.MaxFiles > 0 {
		limit := options.MaxSize*int64(options.MaxFiles) + multipartMemory
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var files []*multipart.FileHeader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			return ProductForm{}, nil, fileErrorFor(c, err, options)
		}
		files = form.File[galleryField]
	} else if err := c.Request.ParseForm(); err != nil {
		return ProductForm{}, nil, fileErrorFor(c, err, options)
	}

	form := ProductForm{
		Title:              strings.TrimSpace(c.PostForm("title")),
		Description:        strings.TrimSpace(c.PostForm("description")),
		Price:              strings.TrimSpace(c.PostForm("price")),
		Category:           strings.TrimSpace(c.PostForm("category")),
		Sizes:              c.PostFormArray("sizes"),
		DiscountAmount:     strings.TrimSpace(c.PostForm("discountAmount")),
		DiscountPercentage: strings.TrimSpace(c.PostForm("discountPercentage")),
	}

	images, err := readImages(c, files, options)
	if err != nil {
		return form, nil, err
	}

	return form, images, nil
}

func fileErrorFor(c *gin.Context, err error, options services.UploadOptions) error {
	lang := utils.GetLangFromContext(c)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return &FileError{Message: i18n.T(lang, i18n.KeyFileTooLarge, options.MaxSize>>20)}
	}
	return &FileError{Message: i18n.T(lang, i18n.KeyFileInvalidUpload)}
}

func readImages(c *gin.Context, files []*multipart.FileHeader, options services.UploadOptions) ([]services.ImageUpload, error) {
	lang := utils.GetLangFromContext(c)

	if options.MaxFiles > 0 && len(files) > options.MaxFiles {
		return nil, &FileError{Message: i18n.T(lang, i18n.KeyFileTooMany, options.MaxFiles)}
	}

	images := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		if options.MaxSize > 0 && fh.Size > options.MaxSize {
			return nil, &FileError{Message: i18n.T(lang, i18n.KeyFileTooLarge, options.MaxSize>>20)}
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !isAllowed(options.AllowedTypes, ext) {
			return nil, &FileError{Message: i18n.T(lang, i18n.KeyFileInvalidType)}
		}
		contentType := fh.Header.Get("Content-Type")
		if declared := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])); declared != "" &&
			declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
			return nil, &FileError{Message: i18n.T(lang, i18n.KeyFileInvalidType)}
		}

		data, err := readFile(fh)
		if err != nil {
			return nil, &FileError{Message: i18n.T(lang, i18n.KeyFileInvalidUpload)}
		}

		images = append(images, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	return images, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer file.Close()

	return io.ReadAll(file)
}

// Input converts the raw submission into a catalog input. Numbers that do
// not parse and unknown sizes are validation errors.
func (f ProductForm) Input() (services.ProductInput, error) {
	input := services.ProductInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    models.Category(f.Category),
	}

	var fields []services.FieldError

	if f.Price == "" {
		fields = append(fields, services.FieldError{Field: "price", Message: "Price is required"})
	} else if v, err := parseNumber(f.Price); err != nil {
		fields = append(fields, services.FieldError{Field: "price", Message: "Price must be a number"})
	} else {
		input.Price = v
	}

	if v, err := parseOptionalNumber(f.DiscountAmount); err != nil {
		fields = append(fields, services.FieldError{Field: "discountAmount", Message: "Discount amount must be a number"})
	} else {
		input.DiscountAmount = v
	}

	if v, err := parseOptionalNumber(f.DiscountPercentage); err != nil {
		fields = append(fields, services.FieldError{Field: "discountPercentage", Message: "Discount percentage must be a number"})
	} else {
		input.DiscountPercentage = v
	}

	sizes, err := NormalizeSizes(f.Sizes)
	if err != nil {
		fields = append(fields, services.FieldError{Field: "sizes", Message: err.Error()})
	}
	input.Sizes = sizes

	if len(fields) > 0 {
		return input, services.NewValidationError(
			"Please fill in all required fields and select at least one size", fields...)
	}
	return input, nil
}

// NormalizeSizes accepts sizes as repeated values, comma separated values
// or both, and returns them in first-seen order without duplicates.
func NormalizeSizes(raw []string) ([]models.Size, error) {
	var sizes []models.Size
	seen := make(map[models.Size]bool)
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			size := models.Size(strings.ToUpper(strings.TrimSpace(part)))
			if size == "" {
				continue
			}
			if !size.IsValid() {
				return nil, fmt.Errorf("unknown size %q", strings.TrimSpace(part))
			}
			if seen[size] {
				continue
			}
			seen[size] = true
			sizes = append(sizes, size)
		}
	}
	return sizes, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func parseOptionalNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return parseNumber(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isAllowed(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
