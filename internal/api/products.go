package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/maisondecor/maison/internal/errors"
)

// MaxGalleryImages is the backend's limit on gallery images per
// product, in addition to the thumbnail.
const MaxGalleryImages = 4

// Product is a catalog listing as returned by the backend.
type Product struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	ImagesURL    []string `json:"imagesUrl"`
	Category     string   `json:"category"`
	IsFeatured   bool     `json:"isFeatured"`
	CreatedAt    string   `json:"createdAt"`
}

// productEnvelope is the backend's {data: ...} wrapper on product
// responses.
type productEnvelope struct {
	Data Product `json:"data"`
}

type productListEnvelope struct {
	Data []Product `json:"data"`
}

// Upload is a file attached to a product form.
type Upload struct {
	Name string
	Data []byte
}

// Digest returns the blake3 digest of the file contents, used to log
// what was sent and to spot truncated uploads.
func (u Upload) Digest() string {
	sum := blake3.Sum256(u.Data)
	return hex.EncodeToString(sum[:8])
}

// ProductForm carries the fields of the add/update multipart form.
// Thumbnail is required on add and optional on update; Images holds at
// most MaxGalleryImages entries.
type ProductForm struct {
	Title       string
	Category    string
	Description string
	Price       float64
	IsFeatured  bool
	Thumbnail   *Upload
	Images      []Upload
}

// encode builds the multipart body. Field names follow the backend
// contract: title, category (lowercased), description, price,
// isFeatured, thumbnail, images (repeated).
func (f ProductForm) encode() (body []byte, contentType string, err error) {
	if len(f.Images) > MaxGalleryImages {
		return nil, "", errors.NewTooManyImagesError(len(f.Images), MaxGalleryImages)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       f.Title,
		"category":    strings.ToLower(f.Category),
		"description": f.Description,
		"price":       strconv.FormatFloat(f.Price, 'f', -1, 64),
		"isFeatured":  strconv.FormatBool(f.IsFeatured),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to write form field", err)
		}
	}

	if f.Thumbnail != nil {
		if err := writeFilePart(w, "thumbnail", *f.Thumbnail); err != nil {
			return nil, "", err
		}
	}
	for _, img := range f.Images {
		if err := writeFilePart(w, "images", img); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to finalize form", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field string, u Upload) error {
	part, err := w.CreateFormFile(field, u.Name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to create file part", err)
	}
	if _, err := part.Write(u.Data); err != nil {
		return errors.Wrap(errors.ErrCodeAPIEncodeFailed, "failed to write file part", err)
	}
	return nil
}

// ListProducts fetches the full catalog through the gateway.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out productListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/products/get", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetProduct fetches one listing by ID through the gateway.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out productEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/products/get/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// AddProduct creates a listing. Requires a thumbnail.
func (c *Client) AddProduct(ctx context.Context, form ProductForm) (*Product, error) {
	if form.Thumbnail == nil {
		return nil, errors.New(errors.ErrCodeProductInvalid, "a thumbnail image is required")
	}
	return c.submitProduct(ctx, http.MethodPost, "/products/add", form)
}

// UpdateProduct updates a listing. Thumbnail and images are optional;
// omitted files keep their server-side values.
func (c *Client) UpdateProduct(ctx context.Context, id string, form ProductForm) (*Product, error) {
	return c.submitProduct(ctx, http.MethodPut, "/products/update/"+url.PathEscape(id), form)
}

func (c *Client) submitProduct(ctx context.Context, method, path string, form ProductForm) (*Product, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}

	for _, u := range form.uploads() {
		c.logger.Debug("attaching upload", "file", u.Name, "bytes", len(u.Data), "digest", u.Digest())
	}

	var out productEnvelope
	req := &request{method: method, path: path, contentType: contentType, body: body}
	if err := c.send(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// uploads returns every file attached to the form.
func (f ProductForm) uploads() []Upload {
	var all []Upload
	if f.Thumbnail != nil {
		all = append(all, *f.Thumbnail)
	}
	return append(all, f.Images...)
}

// DeleteProduct removes a listing.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/products/delete/"+url.PathEscape(id), nil, nil)
}

// ListProducts fetches the catalog anonymously. A 401 from an
// optional-auth backend surfaces as an error to the caller; it never
// triggers a logout.
func (p *PublicClient) ListProducts(ctx context.Context) ([]Product, error) {
	var out productListEnvelope
	if err := p.doJSON(ctx, http.MethodGet, "/products/get", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetProduct fetches one listing anonymously.
func (p *PublicClient) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out productEnvelope
	if err := p.doJSON(ctx, http.MethodGet, "/products/get/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// FeaturedProducts filters the catalog down to featured listings.
func FeaturedProducts(products []Product) []Product {
	var featured []Product
	for _, p := range products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured
}

// FormatPrice renders a price for display.
func FormatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}
