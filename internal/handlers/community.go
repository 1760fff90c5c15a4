package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/services"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"gorm.io/gorm"
)

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	ProjectID *uint  `json:"project_id"`
}

type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func loadPost(ctx *gin.Context, postID uint) (*models.CommunityPost, bool) {
	var post models.CommunityPost

	if err := db.DB.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "게시글을 찾을 수 없습니다"})
			return nil, false
		}
		logger.Log.Errorf("Failed to fetch post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return nil, false
	}

	return &post, true
}

func ListPosts(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	page, limit := utils.ParsePagination(ctx, 10)

	query := db.DB.Model(&models.CommunityPost{})

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if search := ctx.Query("search"); search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count posts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var posts []models.CommunityPost

	err := query.Preload("User").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error

	if err != nil {
		logger.Log.Errorf("Failed to list posts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	response := make([]gin.H, 0, len(posts))

	for i := range posts {
		var commentCount int64

		db.DB.Model(&models.Comment{}).Where("post_id = ?", posts[i].ID).Count(&commentCount)

		body := postResponse(&posts[i])
		body["comment_count"] = commentCount
		response = append(response, body)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"posts": response,
		"meta":  types.NewPageMeta(total, page, limit),
	})
}

func GetPost(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	postID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	post, ok := loadPost(ctx, postID)

	if !ok {
		return
	}

	var comments []models.Comment

	err = db.DB.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at asc").
		Find(&comments).Error

	if err != nil {
		logger.Log.Errorf("Failed to load comments for post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	body := postResponse(post)

	commentBodies := make([]gin.H, 0, len(comments))

	for i := range comments {
		commentBodies = append(commentBodies, commentResponse(&comments[i]))
	}

	body["comments"] = commentBodies
	ctx.JSON(http.StatusOK, body)
}

func CreatePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var req CreatePostRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.ProjectID != nil {
		if _, err := permissions.RequireMembership(db.DB, *req.ProjectID, currentUser.ID); err != nil {
			respondDomainError(ctx, err)
			return
		}
	}

	post := models.CommunityPost{
		Title:     req.Title,
		Content:   req.Content,
		UserID:    currentUser.ID,
		ProjectID: req.ProjectID,
	}

	if err := db.DB.Create(&post).Error; err != nil {
		logger.Log.Errorf("Failed to create post: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	post.User = models.User{Model: gorm.Model{ID: currentUser.ID}, Name: currentUser.Name}
	ctx.JSON(http.StatusCreated, postResponse(&post))
}

// UpdatePost is author-only.
func UpdatePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	postID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	post, ok := loadPost(ctx, postID)

	if !ok {
		return
	}

	if post.UserID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "작성자만 게시글을 수정할 수 있습니다"})
		return
	}

	var req UpdatePostRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	updates := make(map[string]interface{})

	if req.Title != "" {
		updates["title"] = req.Title
	}

	if req.Content != "" {
		updates["content"] = req.Content
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(post).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, postResponse(post))
}

// DeletePost removes the post and its comments. Author-only.
func DeletePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	postID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	post, ok := loadPost(ctx, postID)

	if !ok {
		return
	}

	if post.UserID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "작성자만 게시글을 삭제할 수 있습니다"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "게시글이 성공적으로 삭제되었습니다."})
}

// CreateComment also notifies the post author, unless they commented on
// their own post.
func CreateComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	postID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	post, ok := loadPost(ctx, postID)

	if !ok {
		return
	}

	var req CreateCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	comment := models.Comment{
		Content: req.Content,
		UserID:  currentUser.ID,
		PostID:  post.ID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		logger.Log.Errorf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if post.UserID != currentUser.ID {
		services.Notify(post.UserID, models.NotificationTypeComment,
			"새 댓글이 달렸습니다",
			fmt.Sprintf("%s님이 '%s' 게시글에 댓글을 남겼습니다.", currentUser.Name, post.Title),
			fmt.Sprintf("/community/%d", post.ID), nil)
	}

	comment.User = models.User{Model: gorm.Model{ID: currentUser.ID}, Name: currentUser.Name}
	ctx.JSON(http.StatusCreated, commentResponse(&comment))
}

// DeleteComment allows the comment author or the post author.
func DeleteComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	postID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	commentID, err := utils.ParseIDParam(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	post, ok := loadPost(ctx, postID)

	if !ok {
		return
	}

	var comment models.Comment

	err = db.DB.Where("id = ? AND post_id = ?", commentID, post.ID).First(&comment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "댓글을 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch comment %d: %v", commentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if comment.UserID != currentUser.ID && post.UserID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "댓글을 삭제할 권한이 없습니다"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		logger.Log.Errorf("Failed to delete comment %d: %v", commentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "댓글이 성공적으로 삭제되었습니다."})
}

func postResponse(post *models.CommunityPost) gin.H {
	return gin.H{
		"id":         post.ID,
		"title":      post.Title,
		"content":    post.Content,
		"user_id":    post.UserID,
		"project_id": post.ProjectID,
		"author": gin.H{
			"id":   post.User.ID,
			"name": post.User.Name,
		},
		"created_at": post.CreatedAt,
		"updated_at": post.UpdatedAt,
	}
}

func commentResponse(comment *models.Comment) gin.H {
	return gin.H{
		"id":      comment.ID,
		"content": comment.Content,
		"user_id": comment.UserID,
		"post_id": comment.PostID,
		"author": gin.H{
			"id":   comment.User.ID,
			"name": comment.User.Name,
		},
		"created_at": comment.CreatedAt,
	}
}
