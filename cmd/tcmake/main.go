package main

import "github.com/terminus-geospatial/tcmake/cmd/tcmake/internal"

func main() {
	internal.Execute()
}
