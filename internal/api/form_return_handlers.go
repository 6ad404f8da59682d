package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	"buddhist-lent/pledgeboard/internal/services"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// parseMultipart caps the body at files uploads plus form fields.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request, files int) error {
	limit := int64(files)*h.deps.Config.MaxUploadBytes + maxJSONBody
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge
		}
		return invalidInput("Malformed multipart body", err)
	}
	return nil
}

// formFile returns nil when the field is absent.
func (h *Handlers) formFile(r *http.Request, field string) (multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, invalidInput(fmt.Sprintf("%s could not be read", field), err)
	}
	if header.Size > h.deps.Config.MaxUploadBytes {
		file.Close()
		return nil, invalidInput(fmt.Sprintf("%s is too large", field), nil)
	}
	return file, nil
}

func formReturnRequest(r *http.Request) dtos.FormReturnRequest {
	get := func(k string) string { return strings.TrimSpace(r.FormValue(k)) }
	signers, _ := strconv.Atoi(get("signerCount"))
	return dtos.FormReturnRequest{
		OrganizationName: get("organizationName"),
		OrganizationType: get("organizationType"),
		FirstName:        get("firstName"),
		LastName:         get("lastName"),
		AddressLine:      get("addressLine"),
		District:         get("district"),
		Province:         get("province"),
		ZipCode:          get("zipCode"),
		PhoneNumber:      get("phoneNumber"),
		SignerCount:      signers,
	}
}

// readImages opens image1 and image2. The returned closer releases whichever
// were opened.
func (h *Handlers) readImages(r *http.Request) (services.FormImages, func(), error) {
	var images services.FormImages
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			c.Close()
		}
	}

	f1, err := h.formFile(r, "image1")
	if err != nil {
		return images, closeAll, err
	}
	if f1 != nil {
		opened = append(opened, f1)
		images.Image1 = f1
	}
	f2, err := h.formFile(r, "image2")
	if err != nil {
		return images, closeAll, err
	}
	if f2 != nil {
		opened = append(opened, f2)
		images.Image2 = f2
	}
	return images, closeAll, nil
}

// CreateFormReturn handles POST /api/v1/form-returns (multipart).
//
// @Summary      Submit an organization form return
// @Tags         FormReturns
// @Accept       multipart/form-data
// @Produce      json
// @Param        image1  formData  file  true  "First page"
// @Param        image2  formData  file  true  "Second page"
// @Success      201     {object}  dtos.APIResponse
// @Failure      400     {object}  dtos.APIResponse
// @Router       /api/v1/form-returns [post]
func (h *Handlers) CreateFormReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if err := h.parseMultipart(w, r, 2); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		images, closeImages, err := h.readImages(r)
		defer closeImages()
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		svc := h.deps.Services.FormReturns
		f, err := svc.Create(r.Context(), formReturnRequest(r), images)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form return submitted", svc.ToResponse(f), http.StatusCreated)
	}
}

func (h *Handlers) UpdateFormReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.parseMultipart(w, r, 2); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		images, closeImages, err := h.readImages(r)
		defer closeImages()
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		svc := h.deps.Services.FormReturns
		f, err := svc.Update(r.Context(), id, formReturnRequest(r), images)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form return updated", svc.ToResponse(f))
	}
}

func (h *Handlers) ListFormReturns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		resp, err := h.deps.Services.FormReturns.List(r.Context(), r.URL.Query())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form returns fetched", resp)
	}
}

func (h *Handlers) GetFormReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		svc := h.deps.Services.FormReturns
		f, err := svc.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form return fetched", svc.ToResponse(f))
	}
}

func (h *Handlers) DeleteFormReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		id, err := pathID(r)
		if err != nil {
			respondBadRequest(w, initTime, err)
			return
		}
		if err := h.deps.Services.FormReturns.Delete(r.Context(), id); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Form return deleted", nil)
	}
}
