// Package optimization decides which products to kill or scale, which A/B test
// variant to promote and which prompt template to iterate on. It depends only on
// the ports in ports.go; persistence and transport live in internal/services.
package optimization
