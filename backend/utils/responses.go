package utils

import "github.com/gofiber/fiber/v2"

// PaginatedResponse is the envelope for paginated listings.
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Paginate writes a paginated JSON response.
func Paginate(c *fiber.Ctx, data interface{}, total int64, limit, offset int) error {
	return c.JSON(PaginatedResponse{
		Data:   data,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
