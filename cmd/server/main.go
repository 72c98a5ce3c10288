// cmd/server/main.go
package main

import "github.com/javajoker/ifm-backend/internal/cli"

func main() {
	cli.Execute()
}
