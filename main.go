package main

import "portfolio/service"

func main() {
	service.Execute()
}
