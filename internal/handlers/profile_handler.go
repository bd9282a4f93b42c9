package handlers

import (
	"farmtoclick/internal/middleware"
	"farmtoclick/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the signed-in user's profile.
type ProfileHandler struct {
	authService *services.AuthService
	uploads     *Uploader
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(authService *services.AuthService, uploads *Uploader) *ProfileHandler {
	return &ProfileHandler{authService: authService, uploads: uploads}
}

// RegisterRoutes registers the profile routes behind auth.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/user/profile", auth, h.HandleGetProfile)
	router.Put("/user/profile", auth, h.HandleUpdateProfile)
}

// HandleGetProfile returns the caller's identity.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "Could not load profile")
	}
	return c.JSON(user.Profile())
}

type profileRequest struct {
	FirstName            *string `json:"first_name" validate:"omitempty,max=100"`
	LastName             *string `json:"last_name" validate:"omitempty,max=100"`
	Phone                *string `json:"phone" validate:"omitempty,max=30"`
	OverallLocation      *string `json:"overall_location"`
	ShippingAddress      *string `json:"shipping_address"`
	FarmName             *string `json:"farm_name"`
	FarmPhone            *string `json:"farm_phone"`
	FarmLocation         *string `json:"farm_location"`
	FarmDescription      *string `json:"farm_description" validate:"omitempty,max=1000"`
	RemoveProfilePicture bool    `json:"remove_profile_picture"`
	CurrentPassword      string  `json:"current_password"`
	NewPassword          string  `json:"new_password" validate:"omitempty,min=6"`
}

func (r profileRequest) update() services.ProfileUpdate {
	return services.ProfileUpdate{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           r.Phone,
		OverallLocation: r.OverallLocation,
		ShippingAddress: r.ShippingAddress,
		FarmName:        r.FarmName,
		FarmPhone:       r.FarmPhone,
		FarmLocation:    r.FarmLocation,
		FarmDescription: r.FarmDescription,
		RemovePicture:   r.RemoveProfilePicture,
		CurrentPassword: r.CurrentPassword,
		NewPassword:     r.NewPassword,
	}
}

// HandleUpdateProfile applies a partial update sent as JSON or as multipart
// form data with an optional profile_picture file.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	var picture string

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		field := func(name string) *string {
			if v, ok := form.Value[name]; ok && len(v) > 0 {
				return &v[0]
			}
			return nil
		}
		req.FirstName = field("first_name")
		req.LastName = field("last_name")
		req.Phone = field("phone")
		req.OverallLocation = field("overall_location")
		req.ShippingAddress = field("shipping_address")
		req.FarmName = field("farm_name")
		req.FarmPhone = field("farm_phone")
		req.FarmLocation = field("farm_location")
		req.FarmDescription = field("farm_description")
		if v := field("remove_profile_picture"); v != nil {
			req.RemoveProfilePicture = *v == "true" || *v == "1"
		}
		if v := field("current_password"); v != nil {
			req.CurrentPassword = *v
		}
		if v := field("new_password"); v != nil {
			req.NewPassword = *v
		}
		if err := validate.Struct(req); err != nil {
			return validationFailed(c, err)
		}

		picture, err = h.uploads.SaveImage(c, "profile_picture", "profile")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	} else if ok, err := validateBody(c, &req); !ok {
		return err
	}

	update := req.update()
	if picture != "" {
		update.ProfilePicture = &picture
	}
	user, err := h.authService.UpdateProfile(middleware.UserID(c), update)
	if err != nil {
		h.uploads.Discard(picture)
		return serviceError(c, err, "Could not update profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user.Profile(),
	})
}
