package middleware

import "github.com/gin-gonic/gin"

const (
	// ThemeCookie stores the visitor's colour scheme.
	ThemeCookie = "theme"
	ThemeLight  = "light"
	ThemeDark   = "dark"

	themeKey = "theme"
)

// ValidTheme reports whether mode is a supported colour scheme.
func ValidTheme(mode string) bool {
	return mode == ThemeLight || mode == ThemeDark
}

// Theme exposes the theme cookie to page handlers, defaulting to light.
func Theme() gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, err := c.Cookie(ThemeCookie)
		if err != nil || !ValidTheme(mode) {
			mode = ThemeLight
		}
		c.Set(themeKey, mode)
		c.Next()
	}
}

// CurrentTheme returns the theme resolved by the Theme middleware.
func CurrentTheme(c *gin.Context) string {
	if mode := c.GetString(themeKey); mode != "" {
		return mode
	}
	return ThemeLight
}
