package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/models/dto"
	"github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/middleware"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// maxProfileImageSize bounds profile image uploads
const maxProfileImageSize = 5 << 20

// StudentController adds the student lifecycle routes to the generic ones
type StudentController struct {
	*EntityController[models.Student, models.StudentPatch]
	students *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(students *services.StudentService) *StudentController {
	return &StudentController{
		EntityController: NewEntityController(students.EntityService),
		students:         students,
	}
}

// Delete removes the student together with its internships, competitions,
// certificates and projects
// @Summary Delete a student
// @Description Admin only. Deactivating is the usual way to retire a student; deleting also removes every record the student owns.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResult} "Delete result"
// @Failure 403 {object} dto.APIResponse "Forbidden - admin only"
// @Router /students/{id} [delete]
func (c *StudentController) Delete(ctx *gin.Context) {
	deleted, err := c.students.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResult{Deleted: deleted}, ""))
}

// Deactivate marks a student inactive
// @Summary Deactivate a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student deactivated"
// @Failure 403 {object} dto.APIResponse "Forbidden - admin only"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id}/deactivate [post]
func (c *StudentController) Deactivate(ctx *gin.Context) {
	student, err := c.students.Deactivate(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student deactivated successfully"))
}

// Profile returns a student with every record it owns
// @Summary Get a student's profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile} "Profile retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id}/profile [get]
func (c *StudentController) Profile(ctx *gin.Context) {
	profile, err := c.students.Profile(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// UploadProfileImage replaces the student's profile image
// @Summary Upload a profile image
// @Description Accepts JPEG, PNG or WebP up to 5 MB in the "image" form field
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID" Format(uuid)
// @Param image formData file true "Profile image"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Profile image updated"
// @Failure 400 {object} dto.APIResponse "Missing or unsupported image"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id}/profile-image [put]
func (c *StudentController) UploadProfileImage(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxProfileImageSize+1<<10)
	header, err := ctx.FormFile("image")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image", "is required"))
		return
	}
	if header.Size > maxProfileImageSize {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image", "must be at most 5 MB"))
		return
	}

	file, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	student, err := c.students.UploadProfileImage(ctx.Request.Context(), ctx.Param("id"), file, header.Filename)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Profile image updated successfully"))
}
