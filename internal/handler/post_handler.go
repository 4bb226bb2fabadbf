package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"petmatch/internal/models"
	"petmatch/internal/service"
)

type CreatePostResponse struct {
	PostID   int64              `json:"post_id"`
	PostType models.PostType    `json:"post_type"`
	Images   []models.PostImage `json:"images"`
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (h *Handlers) CreateLostPost(w http.ResponseWriter, r *http.Request) {
	h.createPost(w, r, models.PostTypeLost)
}

func (h *Handlers) CreateFoundPost(w http.ResponseWriter, r *http.Request) {
	h.createPost(w, r, models.PostTypeFound)
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request, postType models.PostType) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("Request too large (max %d MB)", h.Cfg.MaxUploadSize/(1024*1024)), http.StatusRequestEntityTooLarge)
		} else {
			WriteError(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := parsePostForm(r.MultipartForm, postType)
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > service.MaxImagesPerPost {
		WriteError(w, service.ErrTooManyImages.Error(), http.StatusBadRequest)
		return
	}

	for _, fh := range files {
		if !allowedImageTypes[fh.Header.Get("Content-Type")] {
			WriteError(w, "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
			return
		}

		file, err := fh.Open()
		if err != nil {
			WriteError(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		req.Images = append(req.Images, service.ImageUpload{FileName: fh.Filename, File: file, Size: fh.Size})
	}

	var post *models.Post
	if postType == models.PostTypeLost {
		post, err = h.PostService.CreateLost(r.Context(), req)
	} else {
		post, err = h.PostService.CreateFound(r.Context(), req)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	images := post.Images
	if images == nil {
		images = []models.PostImage{}
	}

	writeSuccess(w, CreatePostResponse{PostID: post.PostID, PostType: postType, Images: images}, http.StatusCreated)
}

// parsePostForm reads the text fields of a post. time is RFC 3339 and
// defaults to now.
func parsePostForm(form *multipart.Form, postType models.PostType) (service.CreatePostRequest, error) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var req service.CreatePostRequest

	userID, err := strconv.ParseInt(value("user_id"), 10, 64)
	if err != nil {
		return req, fmt.Errorf("invalid user_id")
	}
	req.UserID = userID

	if postType == models.PostTypeLost && value("animal_id") != "" {
		animalID, err := strconv.ParseInt(value("animal_id"), 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid animal_id")
		}
		req.AnimalID = &animalID
	}

	req.Time = time.Now().UTC()
	if raw := value("time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return req, fmt.Errorf("invalid time, expected RFC 3339")
		}
		req.Time = t
	}

	req.Location = value("location")
	req.Breed = value("breed")
	req.Color = value("color")
	req.ProminentPoint = value("prominent_point")

	for key, dst := range map[string]**float64{"latitude": &req.Latitude, "longitude": &req.Longitude} {
		raw := value(key)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s", key)
		}
		*dst = &f
	}

	return req, nil
}

func postTypeOf(r *http.Request) (models.PostType, error) {
	return models.ParsePostType(mux.Vars(r)["type"])
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postType, err := postTypeOf(r)
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	postID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), postID, postType)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	postType, err := postTypeOf(r)
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	postID, err := pathID(r)
	if err != nil {
		WriteError(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	if postType == models.PostTypeLost {
		err = h.PostService.DeleteLost(r.Context(), postID)
	} else {
		err = h.PostService.DeleteFound(r.Context(), postID)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Post deleted"}, http.StatusOK)
}
