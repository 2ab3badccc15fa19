package member

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	sharedError "github.com/memberhub/registry-api/internal/shared/error"
	"github.com/memberhub/registry-api/internal/shared/handler"
)

type MemberHandler struct {
	memberService *MemberService
}

func NewMemberHandler(memberService *MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// Enroll handles the public multipart enrollment form. Field validation is
// deliberately left to the service so a staged upload can be compensated.
func (h *MemberHandler) Enroll(c *gin.Context) {
	var request EnrollRequest
	if !handler.BindForm(c, &request) {
		return
	}

	photo, err := c.FormFile("photo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		handler.RespondError(c, err, sharedError.InvalidRequest)
		return
	}

	response, err := h.memberService.Enroll(c.Request.Context(), &request, photo)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *MemberHandler) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handler.RespondError(c, err, sharedError.InvalidRequest)
		return
	}

	response, err := h.memberService.List(c.Request.Context(), &query)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	response, err := h.memberService.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) SetStatus(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	var request UpdateStatusRequest
	if !handler.BindJSON(c, &request) {
		return
	}

	response, err := h.memberService.SetStatus(c.Request.Context(), id, request.Status)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), id); err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *MemberHandler) Photo(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	path, name, err := h.memberService.PhotoDownload(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.FileAttachment(path, name)
}

func (h *MemberHandler) Verify(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	response, err := h.memberService.Verify(c.Request.Context(), id)
	if err != nil {
		handler.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// memberID parses the path id; an unparsable id resolves to nothing, so it
// is reported as not found.
func (h *MemberHandler) memberID(c *gin.Context) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		handler.RespondServiceError(c, ErrMemberNotFound)
		return 0, false
	}
	return uint32(id), true
}
