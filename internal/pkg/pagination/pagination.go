package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// FromQuery reads the from and size query parameters. Missing values default
// to 0 and domain.DefaultPageSize; malformed or out-of-range values fail with
// a ValidationError.
func FromQuery(c *gin.Context) (domain.Page, error) {
	from, err := intQuery(c, "from", 0)
	if err != nil {
		return domain.Page{}, err
	}
	size, err := intQuery(c, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(from, size)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("%s must be an integer, got %q", name, raw))
	}
	return v, nil
}
