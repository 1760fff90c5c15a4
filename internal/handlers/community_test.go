package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCommunityPostLifecycle(t *testing.T) {
	r := setupRouter(t)

	author, authorToken := createUser(t, "작성자", "author@example.com")
	_, otherToken := createUser(t, "타인", "other@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/community/posts", authorToken, map[string]interface{}{
		"title":   "여름철 온열질환 예방 공유",
		"content": "그늘막과 휴식 시간 확보가 중요합니다.",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	postID := uint(decodeBody(t, w)["id"].(float64))
	path := fmt.Sprintf("/api/v1/community/posts/%d", postID)

	// Only the author may edit or delete.
	w = doJSON(r, http.MethodPatch, path, otherToken, map[string]interface{}{"title": "수정"})
	requireError(t, w, http.StatusForbidden, "작성자만 게시글을 수정할 수 있습니다")

	w = doJSON(r, http.MethodDelete, path, otherToken, nil)
	requireError(t, w, http.StatusForbidden, "작성자만 게시글을 삭제할 수 있습니다")

	// Another user comments; the author gets a notification.
	w = doJSON(r, http.MethodPost, path+"/comments", otherToken, map[string]interface{}{
		"content": "좋은 정보 감사합니다.",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var notifications int64
	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", author.ID, models.NotificationTypeComment).
		Count(&notifications)
	require.EqualValues(t, 1, notifications)

	// Deleting the post removes its comments too.
	w = doJSON(r, http.MethodDelete, path, authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var comments int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments)
	require.Zero(t, comments)
}

func TestCommentDeletionRights(t *testing.T) {
	r := setupRouter(t)

	author, authorToken := createUser(t, "작성자", "author@example.com")
	commenter, _ := createUser(t, "댓글러", "commenter@example.com")
	_, strangerToken := createUser(t, "제3자", "stranger@example.com")

	post := models.CommunityPost{Title: "제목", Content: "내용", UserID: author.ID}
	require.NoError(t, db.DB.Create(&post).Error)

	comment := models.Comment{Content: "댓글", UserID: commenter.ID, PostID: post.ID}
	require.NoError(t, db.DB.Create(&comment).Error)

	path := fmt.Sprintf("/api/v1/community/posts/%d/comments/%d", post.ID, comment.ID)

	// A third party cannot delete someone else's comment.
	w := doJSON(r, http.MethodDelete, path, strangerToken, nil)
	requireError(t, w, http.StatusForbidden, "댓글을 삭제할 권한이 없습니다")

	// The post author can moderate comments on their post.
	w = doJSON(r, http.MethodDelete, path, authorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCommunityProjectScopedPost(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	_, outsiderToken := createUser(t, "외부인", "outsider@example.com")

	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})

	// Posting into a project requires membership.
	w := doJSON(r, http.MethodPost, "/api/v1/community/posts", outsiderToken, map[string]interface{}{
		"title":      "현장 공지",
		"content":    "내용",
		"project_id": project.ID,
	})
	requireError(t, w, http.StatusForbidden, "이 프로젝트에 접근할 권한이 없습니다")

	w = doJSON(r, http.MethodPost, "/api/v1/community/posts", ownerToken, map[string]interface{}{
		"title":      "현장 공지",
		"content":    "내용",
		"project_id": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
}
