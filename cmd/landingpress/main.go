// Command landingpress runs the landing page server and its maintenance tasks.
package main

import "landingpress/internal/cli"

func main() {
	cli.Execute()
}
