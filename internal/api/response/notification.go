package response

import (
	"github.com/gofiber/fiber/v2"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is the user-facing message attached to every API response.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

func Notify(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

func Destructive(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Error writes {"error", "notification"} with the given status. Extra fields,
// such as state that was updated before a later step failed, are merged in.
func Error(c *fiber.Ctx, status int, n Notification, extra fiber.Map) error {
	body := fiber.Map{
		"error":        n.Description,
		"notification": n,
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func OK(c *fiber.Ctx, n Notification, body fiber.Map) error {
	if body == nil {
		body = fiber.Map{}
	}
	body["notification"] = n
	return c.JSON(body)
}
