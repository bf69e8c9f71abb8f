package main

import (
	"os"

	"aesthetic_doctor_bot/internal/envdoctor"
)

func main() {
	os.Exit(int(envdoctor.Run()))
}
