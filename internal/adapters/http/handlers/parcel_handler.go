package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"dloms-api/internal/adapters/persistence/models"
	"dloms-api/internal/core/domain"
	"dloms-api/internal/core/services"
	"dloms-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	maxCreateDocuments = 10
	maxAttachDocuments = 5
)

// ParcelHandler handles land parcel endpoints
type ParcelHandler struct {
	parcelService *services.ParcelService
}

// NewParcelHandler creates a new parcel handler
func NewParcelHandler(parcelService *services.ParcelService) *ParcelHandler {
	return &ParcelHandler{parcelService: parcelService}
}

// UpdateParcelRequest represents the PUT body; absent fields are untouched
type UpdateParcelRequest struct {
	OwnerDetails *domain.OwnerDetails `json:"ownerDetails"`
	Geometry     json.RawMessage      `json:"geometry"`
	Status       *string              `json:"status"`
}

// Create handles parcel registration
// @Summary Create a new land parcel
// @Tags Parcels
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /parcels [post]
func (h *ParcelHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Expected multipart/form-data body")
	}

	files := form.File["documents"]
	if len(files) > maxCreateDocuments {
		return response.BadRequest(c, "A maximum of 10 documents can be uploaded")
	}

	ownerDetailsRaw := c.FormValue("ownerDetails")
	if ownerDetailsRaw == "" {
		return response.BadRequest(c, "Owner details are required")
	}
	var ownerDetails domain.OwnerDetails
	if err := json.Unmarshal([]byte(ownerDetailsRaw), &ownerDetails); err != nil {
		return response.BadRequest(c, "Owner details must be a valid JSON string")
	}

	geometry := c.FormValue("geometry")
	if geometry == "" {
		return response.BadRequest(c, "Geometry is required")
	}

	input := &services.CreateParcelInput{
		ParcelID:     c.FormValue("parcelId"),
		OwnerDetails: ownerDetails,
		Geometry:     []byte(geometry),
		Status:       c.FormValue("status"),
	}

	parcel, err := h.parcelService.Create(c.Context(), ActorFromLocals(c), input, files)
	if err != nil {
		return h.mapError(c, err, "Server error creating parcel")
	}

	return response.Created(c, "Land parcel created successfully", parcel.ToResponse())
}

// List handles parcel listing with optional search and status filter
// @Summary List land parcels
// @Tags Parcels
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring match on parcel ID, owner name or owner ID number"
// @Param status query string false "Exact status filter"
// @Success 200 {object} response.Response
// @Router /parcels [get]
func (h *ParcelHandler) List(c *fiber.Ctx) error {
	parcels, err := h.parcelService.List(c.Context(), c.Query("search"), c.Query("status"))
	if err != nil {
		return h.mapError(c, err, "Server error fetching parcels")
	}
	return response.Success(c, "", models.ParcelsToResponse(parcels))
}

// Get handles fetching a single parcel by its parcel ID
// @Summary Get a land parcel
// @Tags Parcels
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /parcels/{parcelId} [get]
func (h *ParcelHandler) Get(c *fiber.Ctx) error {
	parcel, err := h.parcelService.Get(c.Context(), c.Params("parcelId"))
	if err != nil {
		return h.mapError(c, err, "Server error fetching parcel")
	}
	return response.Success(c, "", parcel.ToResponse())
}

// Update handles parcel updates
// @Summary Update a land parcel
// @Tags Parcels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /parcels/{parcelId} [put]
func (h *ParcelHandler) Update(c *fiber.Ctx) error {
	var req UpdateParcelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	patch := &services.UpdateParcelInput{
		OwnerDetails: req.OwnerDetails,
		Geometry:     []byte(req.Geometry),
		Status:       req.Status,
	}

	parcel, err := h.parcelService.Update(c.Context(), ActorFromLocals(c), c.Params("parcelId"), patch)
	if err != nil {
		return h.mapError(c, err, "Server error updating parcel")
	}

	return response.Success(c, "Land parcel updated successfully", parcel.ToResponse())
}

// Delete handles parcel deletion (admin only), cascading to document cleanup
// @Summary Delete a land parcel
// @Tags Parcels
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /parcels/{parcelId} [delete]
func (h *ParcelHandler) Delete(c *fiber.Ctx) error {
	if err := h.parcelService.Delete(c.Context(), ActorFromLocals(c), c.Params("parcelId")); err != nil {
		return h.mapError(c, err, "Server error deleting parcel")
	}
	return response.Success(c, "Land parcel and associated documents deleted successfully", nil)
}

// AddDocuments handles attaching new documents to an existing parcel
// @Summary Add documents to a parcel
// @Tags Parcels
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /parcels/{parcelId}/documents [post]
func (h *ParcelHandler) AddDocuments(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Expected multipart/form-data body")
	}

	files := form.File["new_documents"]
	if len(files) == 0 {
		return response.BadRequest(c, "No documents provided for upload")
	}
	if len(files) > maxAttachDocuments {
		return response.BadRequest(c, "A maximum of 5 documents can be added at once")
	}

	parcel, err := h.parcelService.AddDocuments(c.Context(), ActorFromLocals(c), c.Params("parcelId"), files)
	if err != nil {
		return h.mapError(c, err, "Server error adding documents")
	}

	return response.Success(c, "Documents added successfully", parcel.ToResponse())
}

// WithinBBox handles the spatial bounding-box query for the map view
// @Summary Find parcels within a bounding box
// @Tags Parcels
// @Produce json
// @Security BearerAuth
// @Param minLon query number true "West bound"
// @Param minLat query number true "South bound"
// @Param maxLon query number true "East bound"
// @Param maxLat query number true "North bound"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /parcels/spatial/within-bbox [get]
func (h *ParcelHandler) WithinBBox(c *fiber.Ctx) error {
	bounds := make(map[string]float64, 4)
	for _, name := range []string{"minLon", "minLat", "maxLon", "maxLat"} {
		raw := c.Query(name)
		if raw == "" {
			return response.BadRequest(c, "Missing bounding box parameters (minLon, minLat, maxLon, maxLat)")
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BadRequest(c, "Bounding box parameters must be numbers")
		}
		bounds[name] = value
	}

	parcels, err := h.parcelService.ListWithinBoundingBox(
		c.Context(),
		bounds["minLon"], bounds["minLat"], bounds["maxLon"], bounds["maxLat"],
	)
	if err != nil {
		return h.mapError(c, err, "Server error performing spatial query")
	}

	return response.Success(c, "", models.ParcelsToResponse(parcels))
}

// mapError translates service errors to the API's status taxonomy. Storage
// details never leak to clients; they stay in the server log.
func (h *ParcelHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrParcelNotFound):
		return response.NotFound(c, "Land parcel not found")
	case errors.Is(err, domain.ErrParcelAlreadyExists):
		return response.Conflict(c, "Parcel with this ID already exists")
	case errors.Is(err, services.ErrRoleNotAllowed),
		errors.Is(err, services.ErrNotParcelOwner),
		errors.Is(err, services.ErrStatusRestricted):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidGeometry),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNoDocuments),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrFileTypeNotAllowed),
		errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}
