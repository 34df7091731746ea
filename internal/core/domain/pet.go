package domain

import "time"

// MaxPetImages is the maximum number of image attachments per listing.
const MaxPetImages = 3

// PetImage is a stored image attached to a Pet listing.
type PetImage struct {
	ID    int64
	PetID int64
	// Path is the storage key returned by the image store.
	Path  string
	Order int
}

// Pet is an adoptable-pet listing owned by the identity that created it.
type Pet struct {
	ID          int64
	Name        string
	Species     string
	Breed       string
	Age         int
	BirthDate   *time.Time
	Sex         string
	City        string
	Description string
	// Image is the storage key of the primary image, empty when none.
	Image   string
	Images  []PetImage
	OwnerID int64
	// Owner is populated by repository reads.
	Owner     *User
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextImageOrders returns the first n free display positions in 1..MaxPetImages.
// ok is false when fewer than n positions are free.
func (p *Pet) NextImageOrders(n int) (orders []int, ok bool) {
	used := make(map[int]bool, len(p.Images))
	for _, img := range p.Images {
		used[img.Order] = true
	}
	for o := 1; o <= MaxPetImages && len(orders) < n; o++ {
		if !used[o] {
			orders = append(orders, o)
		}
	}
	return orders, len(orders) == n
}

// ImageByID returns the attachment with the given id.
func (p *Pet) ImageByID(id int64) (PetImage, bool) {
	for _, img := range p.Images {
		if img.ID == id {
			return img, true
		}
	}
	return PetImage{}, false
}
