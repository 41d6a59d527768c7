package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/auth"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/database"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
)

const (
	maxContentLen = 500
	maxImageSize  = 2 << 20 // 2MB
	maxFormMemory = 8 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// updatePostRequest carries the JSON body of a post update. Pointer fields
// distinguish "absent" from "set to empty".
type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListFeed returns every post with author, comments and reactions. Reads
// are global: any authenticated user sees all posts.
func (api *Api) ListFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := api.Store.ListPosts()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load posts.")
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// ListMyPosts returns only the caller's posts
func (api *Api) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	posts, err := api.Store.ListPostsByUser(userID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load posts.")
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":   posts,
		"message": "Posts retrieved successfully",
	})
}

func (api *Api) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var title, content string
	var imagePath *string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		title = r.FormValue("title")
		content = r.FormValue("content")

		// Validate before storing the image so a rejected request leaves no
		// orphaned upload behind.
		if errs := validateContent(content); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		key, ferr, err := api.saveUploadedImage(r)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Failed to store image.")
			return
		}
		if ferr != nil {
			writeValidationErrors(w, ferr)
			return
		}
		imagePath = key
	} else {
		var req struct {
			Title   *string `json:"title"`
			Content string  `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if req.Title != nil {
			title = *req.Title
		}
		content = req.Content
	}

	if errs := validateContent(content); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	now := time.Now()
	post := &models.Post{
		UserID:    userID,
		Content:   content,
		ImagePath: imagePath,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if title != "" {
		post.Title = &title
	}

	if err := api.Store.CreatePost(post); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create post.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"post":    post,
		"message": "Post created successfully",
	})
}

func (api *Api) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}

	// Owner-scoped lookup: a foreign-owned post answers exactly like a
	// missing one.
	post, err := api.Store.GetPostOwned(userID, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to update post.")
		return
	}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if v, present := formField(r, "title"); present {
			if v == "" {
				post.Title = nil
			} else {
				post.Title = &v
			}
		}
		if v, present := formField(r, "content"); present {
			post.Content = v
		}
		if errs := validateContent(post.Content); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		key, ferr, err := api.saveUploadedImage(r)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "Failed to store image.")
			return
		}
		if ferr != nil {
			writeValidationErrors(w, ferr)
			return
		}
		if key != nil {
			if post.ImagePath != nil {
				if err := api.Files.Delete(r.Context(), *post.ImagePath); err != nil {
					log.Printf("Failed to delete replaced image %s: %v", *post.ImagePath, err)
				}
			}
			post.ImagePath = key
		}
	} else {
		var req updatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if req.Title != nil {
			if *req.Title == "" {
				post.Title = nil
			} else {
				post.Title = req.Title
			}
		}
		if req.Content != nil {
			post.Content = *req.Content
		}
	}

	if errs := validateContent(post.Content); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	if err := api.Store.UpdatePost(post); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to update post.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":    post,
		"message": "Post updated successfully",
	})
}

func (api *Api) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}

	if err := api.Store.DeletePost(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to delete post.")
		return
	}

	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

func (api *Api) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}

	comments, err := api.Store.ListCommentsByPost(id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load comments.")
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (api *Api) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	postID, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}
	if _, err := api.Store.GetPost(postID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to create comment.")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if errs := validateContent(req.Content); errs != nil {
		writeValidationErrors(w, errs)
		return
	}

	now := time.Now()
	comment := &models.Comment{
		UserID:    userID,
		PostID:    postID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := api.Store.CreateComment(comment); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create comment.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"comment": comment,
		"message": "Comment created successfully",
	})
}

func (api *Api) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Comment not found.")
		return
	}

	if err := api.Store.DeleteComment(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Comment not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to delete comment.")
		return
	}

	writeMessage(w, http.StatusOK, "Comment deleted successfully")
}

func (api *Api) ListReactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}

	reactions, err := api.Store.ListReactionsByPost(id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to load reactions.")
		return
	}
	if reactions == nil {
		reactions = []*models.Reaction{}
	}
	writeJSON(w, http.StatusOK, reactions)
}

func (api *Api) CreateReaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	postID, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Post not found.")
		return
	}
	if _, err := api.Store.GetPost(postID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to create reaction.")
		return
	}

	var req struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Type == "" || len(req.Type) > 50 {
		writeValidationErrors(w, fieldErrors{"type": {"The type field is required."}})
		return
	}

	reaction := &models.Reaction{
		UserID:    userID,
		PostID:    postID,
		Type:      req.Type,
		CreatedAt: time.Now(),
	}
	if err := api.Store.UpsertReaction(reaction); err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to create reaction.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reaction": reaction,
		"message":  "Reaction saved successfully",
	})
}

func (api *Api) DeleteReaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Reaction not found.")
		return
	}

	if err := api.Store.DeleteReaction(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Reaction not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to delete reaction.")
		return
	}

	writeMessage(w, http.StatusOK, "Reaction deleted successfully")
}

// saveUploadedImage validates and stores the multipart "image" field, if
// present. Returns the stored key, or field-level validation errors.
func (api *Api) saveUploadedImage(r *http.Request) (*string, fieldErrors, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil, nil
	}
	if err != nil {
		return nil, fieldErrors{"image": {"The image failed to upload."}}, nil
	}
	defer file.Close()

	if header.Size > maxImageSize {
		return nil, fieldErrors{"image": {"The image may not be greater than 2048 kilobytes."}}, nil
	}

	// Sniff the real content type rather than trusting the filename
	sniff := make([]byte, 512)
	n, err := file.Read(sniff)
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	sniff = sniff[:n]

	contentType := http.DetectContentType(sniff)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fieldErrors{"image": {"The image must be a file of type: jpeg, png, jpg, gif."}}, nil
	}

	key := "posts/" + uuid.NewString() + ext
	body := io.MultiReader(bytes.NewReader(sniff), file)
	if err := api.Files.Save(r.Context(), key, body, contentType); err != nil {
		return nil, nil, err
	}
	return &key, nil, nil
}

func validateContent(content string) fieldErrors {
	if content == "" {
		return fieldErrors{"content": {"The content field is required."}}
	}
	if len(content) > maxContentLen {
		return fieldErrors{"content": {"The content may not be greater than 500 characters."}}
	}
	return nil
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formField(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
