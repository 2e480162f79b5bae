//go:build mage

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "nestegg"

// Build builds nestegg for Linux with Green Tea GC
func Build() error {
	fmt.Println("Building nestegg for Linux with Go 1.25 + Green Tea GC...")
	env := map[string]string{
		"GOOS":         "linux",
		"GOARCH":       "amd64",
		"GOEXPERIMENT": "greenteagc",
	}
	return sh.RunWith(env, "go", "build", "-o", binary+"-linux-amd64", "./cmd/nestegg")
}

// BuildDocker builds the container variant (no startup banner)
func BuildDocker() error {
	fmt.Println("Building nestegg for Docker...")
	env := map[string]string{
		"GOOS":        "linux",
		"GOARCH":      "amd64",
		"CGO_ENABLED": "0",
	}
	return sh.RunWith(env, "go", "build", "-tags", "docker", "-o", binary+"-docker", "./cmd/nestegg")
}

// BuildLocal builds nestegg for current platform
func BuildLocal() error {
	fmt.Printf("Building nestegg for %s/%s...\n", runtime.GOOS, runtime.GOARCH)
	return sh.Run("go", "build", "-o", binary, "./cmd/nestegg")
}

// Test runs tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-v", "./...")
}

// TestIntegration runs tests against a real PostgreSQL (TEST_DATABASE_URL)
func TestIntegration() error {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		fmt.Println("TEST_DATABASE_URL not set, integration tests will use the default local database")
	}
	return sh.Run("go", "test", "-count=1", "./internal/models/...")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, f := range []string{binary, binary + "-linux-amd64", binary + "-docker"} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Migrate applies pending database migrations using the local build
func Migrate() error {
	mg.Deps(BuildLocal)
	return sh.Run("./"+binary, "migrate", "up")
}

// Update upgrades all Go dependencies
func Update() error {
	fmt.Println("Updating dependencies...")
	if err := sh.Run("go", "get", "-u", "./..."); err != nil {
		return err
	}
	return sh.Run("go", "mod", "tidy")
}

// Fmt runs gofmt on all Go files
func Fmt() error {
	fmt.Println("Formatting code...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet on all Go files
func Vet() error {
	fmt.Println("Vetting code...")
	return sh.Run("go", "vet", "./...")
}

// Tidy tidies go.mod
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// CI runs all checks for continuous integration
func CI() error {
	mg.SerialDeps(Fmt, Vet, Test)
	fmt.Println("All CI checks passed!")
	return nil
}
