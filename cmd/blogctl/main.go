// Command blogctl administers the blog database: migrations, fixtures and exports.
package main

func main() {
	Execute()
}
