package handlers

import "github.com/gofiber/fiber/v2"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads the 1-based "page" and "limit" query parameters, applying
// the listing convention: page defaults to 1 (zero and negatives clamp to
// 1), limit defaults to 20 and is capped at 100.
func pageParams(c *fiber.Ctx) (page, limit int) {
	return clampPage(c.QueryInt("page", 1), c.QueryInt("limit", defaultPageSize))
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

// pagedResponse is the envelope for every paginated listing: the page slice
// plus the total row count so clients can render page controls.
func pagedResponse(items interface{}, total int64, page, limit int) fiber.Map {
	return fiber.Map{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
