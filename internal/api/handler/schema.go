package handler

import (
	"time"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	LastName string `json:"lastName" validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN CLIENT PARTNER admin client partner"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	Type  string       `json:"type"`
	User  *domain.User `json:"user"`
}

// --- Pets ---

// petRequest is the JSON document carried in the "mascota" multipart part.
type petRequest struct {
	Name        string  `json:"nombre"          validate:"required"`
	Species     string  `json:"especie"         validate:"required"`
	Breed       string  `json:"raza"`
	Age         int     `json:"edad"            validate:"gte=0"`
	BirthDate   *string `json:"fechaNacimiento"`
	Sex         *string `json:"sexo"`
	City        *string `json:"ciudad"`
	Description *string `json:"descripcion"     validate:"omitempty,max=2000"`
}

type petImageResponse struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Order int    `json:"orden"`
}

type petResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"nombre"`
	Species     string             `json:"especie"`
	Breed       string             `json:"raza"`
	Age         int                `json:"edad"`
	BirthDate   string             `json:"fechaNacimiento,omitempty"`
	Sex         string             `json:"sexo"`
	City        string             `json:"ciudad"`
	Description string             `json:"descripcion"`
	Image       string             `json:"imagen,omitempty"`
	Images      []petImageResponse `json:"imagenes"`
	OwnerID     int64              `json:"propietarioId"`
	Owner       *domain.User       `json:"person,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// --- Donations ---

type donationRequest struct {
	DonorID       int64      `json:"donanteId"     validate:"gte=0"`
	Amount        float64    `json:"monto"         validate:"required,gt=0"`
	PaymentMethod string     `json:"metodoPago"    validate:"required"`
	DonatedAt     *time.Time `json:"fechaDonacion"`
	Comment       string     `json:"comentario"    validate:"max=500"`
}

type donationResponse struct {
	ID            int64     `json:"id"`
	DonorID       int64     `json:"donanteId"`
	Amount        float64   `json:"monto"`
	PaymentMethod string    `json:"metodoPago"`
	DonatedAt     time.Time `json:"fechaDonacion"`
	Comment       string    `json:"comentario"`
}

// --- Roles ---

type roleRequest struct {
	Type string `json:"roleType" validate:"required"`
}

// --- Persons ---

// personRequest serves create and update; on update empty fields keep the
// stored values.
type personRequest struct {
	Name     string `json:"name"     validate:"omitempty,max=50"`
	LastName string `json:"lastName" validate:"omitempty,max=50"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role"`
}

// --- Adoption requests ---

type adoptionRequest struct {
	RequesterID int64  `json:"solicitanteId" validate:"gte=0"`
	PetID       int64  `json:"mascotaId"     validate:"required,gt=0"`
	Comment     string `json:"comentario"    validate:"max=1000"`
}

type adoptionResponse struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"solicitanteId"`
	PetID       int64     `json:"mascotaId"`
	Status      string    `json:"estado"`
	Comment     string    `json:"comentario"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
