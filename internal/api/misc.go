package api

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
)

// hello is a smoke endpoint with no judge semantics, grounded on the
// source's main.rs greet handler.
func hello(c *gin.Context) {
	c.String(200, fmt.Sprintf("Hello, %s!", c.Param("name")))
}

// internalExit is the test-harness shutdown hook from spec.md §6: it ends
// the process rather than returning an HTTP response.
func internalExit(c *gin.Context) {
	c.Status(200)
	os.Exit(0)
}
