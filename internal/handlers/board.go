// board.go — public board content: notices, FAQs, and policy documents.
// Reads are public; mutations live under the admin group in the router.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moimlab/clubhub/internal/middleware"
	"github.com/moimlab/clubhub/internal/models"
)

type NoticeResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Pinned    bool   `json:"pinned"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type FAQResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SortOrder int    `json:"sort_order"`
}

func toNoticeResponse(n *models.Notice) NoticeResponse {
	return NoticeResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Body:      n.Body,
		Pinned:    n.Pinned,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ListNotices handles GET /api/v1/notices — public, paginated, pinned first.
func ListNotices(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit := pageParams(c)

		var total int64
		if err := db.Model(&models.Notice{}).Count(&total).Error; err != nil {
			return serverError(c, err, "notice count failed")
		}

		var notices []models.Notice
		err := db.Order("pinned DESC, created_at DESC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&notices).Error
		if err != nil {
			return serverError(c, err, "notice list failed")
		}

		items := make([]NoticeResponse, 0, len(notices))
		for i := range notices {
			items = append(items, toNoticeResponse(&notices[i]))
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// GetNotice handles GET /api/v1/notices/:noticeId — public.
func GetNotice(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		noticeID, err := uuid.Parse(c.Params("noticeId"))
		if err != nil {
			return notFound(c, "notice not found")
		}

		var notice models.Notice
		if err := db.First(&notice, "id = ?", noticeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "notice not found")
			}
			return serverError(c, err, "notice lookup failed")
		}
		return c.JSON(toNoticeResponse(&notice))
	}
}

// CreateNotice handles POST /api/v1/admin/notices (admin only).
func CreateNotice(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(middleware.LocalUserID).(uint)

		var req struct {
			Title  string `json:"title"`
			Body   string `json:"body"`
			Pinned bool   `json:"pinned"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Title == "" {
			return badRequest(c, "title is required")
		}

		notice := models.Notice{
			Title:     req.Title,
			Body:      req.Body,
			Pinned:    req.Pinned,
			CreatedBy: userID,
		}
		if err := db.Create(&notice).Error; err != nil {
			return serverError(c, err, "notice creation failed")
		}
		return c.Status(fiber.StatusCreated).JSON(toNoticeResponse(&notice))
	}
}

// UpdateNotice handles PATCH /api/v1/admin/notices/:noticeId (admin only).
func UpdateNotice(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		noticeID, err := uuid.Parse(c.Params("noticeId"))
		if err != nil {
			return notFound(c, "notice not found")
		}

		var req struct {
			Title  *string `json:"title"`
			Body   *string `json:"body"`
			Pinned *bool   `json:"pinned"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			if *req.Title == "" {
				return badRequest(c, "title cannot be empty")
			}
			updates["title"] = *req.Title
		}
		if req.Body != nil {
			updates["body"] = *req.Body
		}
		if req.Pinned != nil {
			updates["pinned"] = *req.Pinned
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		res := db.Model(&models.Notice{}).Where("id = ?", noticeID).Updates(updates)
		if res.Error != nil {
			return serverError(c, res.Error, "notice update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "notice not found")
		}
		return c.JSON(fiber.Map{"message": "notice updated"})
	}
}

// DeleteNotice handles DELETE /api/v1/admin/notices/:noticeId (admin only).
func DeleteNotice(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		noticeID, err := uuid.Parse(c.Params("noticeId"))
		if err != nil {
			return notFound(c, "notice not found")
		}

		res := db.Where("id = ?", noticeID).Delete(&models.Notice{})
		if res.Error != nil {
			return serverError(c, res.Error, "notice deletion failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "notice not found")
		}
		return c.JSON(fiber.Map{"message": "notice deleted"})
	}
}

// ListFAQs handles GET /api/v1/faqs — public, ordered by sort order.
func ListFAQs(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit := pageParams(c)

		var total int64
		if err := db.Model(&models.FAQ{}).Count(&total).Error; err != nil {
			return serverError(c, err, "faq count failed")
		}

		var faqs []models.FAQ
		err := db.Order("sort_order ASC, created_at ASC").
			Offset(offset(page, limit)).
			Limit(limit).
			Find(&faqs).Error
		if err != nil {
			return serverError(c, err, "faq list failed")
		}

		items := make([]FAQResponse, 0, len(faqs))
		for _, f := range faqs {
			items = append(items, FAQResponse{
				ID:        f.ID.String(),
				Question:  f.Question,
				Answer:    f.Answer,
				SortOrder: f.SortOrder,
			})
		}
		return c.JSON(pagedResponse(items, total, page, limit))
	}
}

// CreateFAQ handles POST /api/v1/admin/faqs (admin only).
func CreateFAQ(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Question  string `json:"question"`
			Answer    string `json:"answer"`
			SortOrder int    `json:"sort_order"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if req.Question == "" {
			return badRequest(c, "question is required")
		}

		faq := models.FAQ{
			Question:  req.Question,
			Answer:    req.Answer,
			SortOrder: req.SortOrder,
		}
		if err := db.Create(&faq).Error; err != nil {
			return serverError(c, err, "faq creation failed")
		}
		return c.Status(fiber.StatusCreated).JSON(FAQResponse{
			ID:        faq.ID.String(),
			Question:  faq.Question,
			Answer:    faq.Answer,
			SortOrder: faq.SortOrder,
		})
	}
}

// UpdateFAQ handles PATCH /api/v1/admin/faqs/:faqId (admin only).
func UpdateFAQ(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		faqID, err := uuid.Parse(c.Params("faqId"))
		if err != nil {
			return notFound(c, "faq not found")
		}

		var req struct {
			Question  *string `json:"question"`
			Answer    *string `json:"answer"`
			SortOrder *int    `json:"sort_order"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}

		updates := map[string]interface{}{}
		if req.Question != nil {
			if *req.Question == "" {
				return badRequest(c, "question cannot be empty")
			}
			updates["question"] = *req.Question
		}
		if req.Answer != nil {
			updates["answer"] = *req.Answer
		}
		if req.SortOrder != nil {
			updates["sort_order"] = *req.SortOrder
		}
		if len(updates) == 0 {
			return badRequest(c, "nothing to update")
		}

		res := db.Model(&models.FAQ{}).Where("id = ?", faqID).Updates(updates)
		if res.Error != nil {
			return serverError(c, res.Error, "faq update failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "faq not found")
		}
		return c.JSON(fiber.Map{"message": "faq updated"})
	}
}

// DeleteFAQ handles DELETE /api/v1/admin/faqs/:faqId (admin only).
func DeleteFAQ(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		faqID, err := uuid.Parse(c.Params("faqId"))
		if err != nil {
			return notFound(c, "faq not found")
		}

		res := db.Where("id = ?", faqID).Delete(&models.FAQ{})
		if res.Error != nil {
			return serverError(c, res.Error, "faq deletion failed")
		}
		if res.RowsAffected == 0 {
			return notFound(c, "faq not found")
		}
		return c.JSON(fiber.Map{"message": "faq deleted"})
	}
}

// GetPolicy handles GET /api/v1/policies/:slug — public. Returns the
// document's currently published version.
func GetPolicy(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc models.PolicyDocument
		if err := db.First(&doc, "slug = ?", c.Params("slug")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "policy not found")
			}
			return serverError(c, err, "policy lookup failed")
		}
		if doc.CurrentVersionID == nil {
			return notFound(c, "policy has no published version")
		}

		var version models.PolicyVersion
		if err := db.First(&version, "id = ?", *doc.CurrentVersionID).Error; err != nil {
			return serverError(c, err, "policy version lookup failed")
		}

		return c.JSON(fiber.Map{
			"slug":         doc.Slug,
			"title":        doc.Title,
			"version":      version.Version,
			"body":         version.Body,
			"published_at": version.PublishedAt.UTC().Format(time.RFC3339),
		})
	}
}

// PublishPolicyVersion handles POST /api/v1/admin/policies/:slug/versions
// (admin only). Inserts the next version and moves the document's current
// pointer to it in one transaction.
func PublishPolicyVersion(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")

		var req struct {
			Body string `json:"body"`
		}
		if err := c.BodyParser(&req); err != nil || req.Body == "" {
			return badRequest(c, "body is required")
		}

		var doc models.PolicyDocument
		if err := db.First(&doc, "slug = ?", slug).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(c, "policy not found")
			}
			return serverError(c, err, "policy lookup failed")
		}

		var version models.PolicyVersion
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var max int
			if err := tx.Model(&models.PolicyVersion{}).
				Where("slug = ?", slug).
				Select("COALESCE(MAX(version), 0)").
				Scan(&max).Error; err != nil {
				return err
			}

			version = models.PolicyVersion{
				Slug:    slug,
				Version: max + 1,
				Body:    req.Body,
			}
			if err := tx.Create(&version).Error; err != nil {
				return err
			}

			return tx.Model(&models.PolicyDocument{}).
				Where("slug = ?", slug).
				Update("current_version_id", version.ID).Error
		})
		if txErr != nil {
			return serverError(c, txErr, "policy publication failed")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"slug":         slug,
			"version":      version.Version,
			"published_at": version.PublishedAt.UTC().Format(time.RFC3339),
		})
	}
}
