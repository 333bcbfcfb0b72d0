package domain

import "time"

// A zero ID marks an entity that has not been persisted yet; the store
// assigns a durable identity on commit.
const UnsavedID int64 = 0

// Product represents a catalog product together with its owned image and
// size records
type Product struct {
	ID          int64          `json:"id" db:"id"`
	CategoryID  int64          `json:"category_id" db:"category_id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Price       float64        `json:"price" db:"price"`
	Position    int            `json:"position" db:"position"`
	Weight      float64        `json:"weight" db:"weight"`
	Active      bool           `json:"active" db:"active"`
	UrlName     string         `json:"url_name" db:"url_name"`
	Images      []ProductImage `json:"images"`
	Sizes       []Size         `json:"sizes"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

func (p *Product) EntityID() int64      { return p.ID }
func (p *Product) SetEntityID(id int64) { p.ID = id }

// AttachImage appends an image to the product's gallery, taking the next
// display position.
func (p *Product) AttachImage(img Image) {
	position := 1
	if n := len(p.Images); n > 0 {
		position = p.Images[n-1].Position + 1
	}
	p.Images = append(p.Images, ProductImage{
		ProductID: p.ID,
		Image:     img,
		Position:  position,
	})
}

// SizeNamed returns the size record with the given name, or nil.
func (p *Product) SizeNamed(name string) *Size {
	for i := range p.Sizes {
		if p.Sizes[i].Name == name {
			return &p.Sizes[i]
		}
	}
	return nil
}

// ProductImage links a product to one of its images with a display position.
// (ProductID, ImageID) pairs are unique per product.
type ProductImage struct {
	ID        int64 `json:"id" db:"id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	ImageID   int64 `json:"image_id" db:"image_id"`
	Position  int   `json:"position" db:"position"`
	Image     Image `json:"image"`
}

// Image is a stored upload. Filename is an opaque handle into the image
// store, not the name the file was uploaded under.
type Image struct {
	ID          int64  `json:"id" db:"id"`
	Filename    string `json:"filename" db:"filename"`
	Description string `json:"description" db:"description"`
}

// Size is a per-product stock record (S/M/L, shoe sizes, ...).
type Size struct {
	ID        int64  `json:"id" db:"id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	Name      string `json:"name" db:"name"`
	InStock   bool   `json:"in_stock" db:"in_stock"`
	Active    bool   `json:"active" db:"active"`
}

// Category is a node in the self-referential category tree. Category names
// are unique store-wide.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	Position  int       `json:"position" db:"position"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (c *Category) EntityID() int64      { return c.ID }
func (c *Category) SetEntityID(id int64) { c.ID = id }

// Content is an editable storefront page (about, terms, ...). Name and
// UrlName are both unique.
type Content struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	UrlName  string `json:"url_name" db:"url_name"`
	Body     string `json:"body" db:"body"`
	Position int    `json:"position" db:"position"`
	Active   bool   `json:"active" db:"active"`
}

func (c *Content) EntityID() int64      { return c.ID }
func (c *Content) SetEntityID(id int64) { c.ID = id }
