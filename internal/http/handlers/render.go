package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(c)
	}
	if _, ok := data["Search"]; !ok {
		data["Search"] = c.Query("location")
	}
	return c.Render(tmpl, data)
}
