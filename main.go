package main

import (
	"github.com/alberto-moreno-sa/notion-blog/cmd"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cmd.Execute()
}
