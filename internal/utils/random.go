package utils

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

var commonFirstNames = []string{
	"Aarav", "Vivaan", "Aditya", "Arjun", "Sai", "Ishaan", "Rohan", "Kabir", "Ravi", "Suresh",
	"Ananya", "Diya", "Meena", "Priya", "Kavya", "Lakshmi", "Pooja", "Sneha", "Asha", "Neha",
}
var commonSurnames = []string{
	"Sharma", "Verma", "Gupta", "Agarwal", "Patel", "Singh", "Kumar", "Reddy", "Iyer", "Nair",
	"Joshi", "Mehta", "Chopra", "Bose", "Das", "Yadav", "Mishra", "Pandey", "Rao", "Jain",
}
var localities = []string{
	"Sector 14", "Model Town", "Civil Lines", "Shastri Nagar", "Gandhi Chowk",
	"Rajendra Nagar", "Old Market", "Station Road", "Lake View", "Green Park",
}

func GenerateRandomName() string {
	return commonFirstNames[rand.Intn(len(commonFirstNames))] + " " + commonSurnames[rand.Intn(len(commonSurnames))]
}

var digits = "0123456789"

// GenerateUsernameFromName lowercases the first name and appends one to three digits.
func GenerateUsernameFromName(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	username := strings.ToLower(first)

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomPhone() string {
	phone := make([]byte, 10)
	phone[0] = "6789"[rand.Intn(4)]
	for i := 1; i < len(phone); i++ {
		phone[i] = digits[rand.Intn(len(digits))]
	}
	return "+91" + string(phone)
}

func GenerateRandomLocation() string {
	return fmt.Sprintf("%d, %s", rand.Intn(200)+1, localities[rand.Intn(len(localities))])
}

func GenerateRandomShift() domain.Shift {
	if rand.Intn(2) == 0 {
		return domain.ShiftAM
	}
	return domain.ShiftPM
}

// GenerateRandomClient draws half-litre steps between 0.5 and 3 litres at 50 to 70 per litre.
func GenerateRandomClient() *domain.Client {
	name := GenerateRandomName()
	return &domain.Client{
		Name:           name,
		Phone:          GenerateRandomPhone(),
		Email:          strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Location:       GenerateRandomLocation(),
		TimeShift:      GenerateRandomShift(),
		PricePerLitre:  decimal.NewFromInt(int64(50 + 5*rand.Intn(5))),
		Quantity:       decimal.NewFromInt(int64(rand.Intn(6) + 1)).Div(decimal.NewFromInt(2)),
		PriorityStatus: rand.Intn(5) == 0,
	}
}

func GenerateRandomStaff() *domain.Staff {
	return &domain.Staff{
		Name:        GenerateRandomName(),
		Phone:       GenerateRandomPhone(),
		Location:    GenerateRandomLocation(),
		IsAvailable: true,
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

// GenerateRandomPassword draws from crypto/rand; the result is mailed to a real person.
func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	limit := big.NewInt(int64(len(letters)))
	for i := range randomPassword {
		n, err := crand.Int(crand.Reader, limit)
		if err != nil {
			panic(err)
		}
		randomPassword[i] = letters[n.Int64()]
	}
	return string(randomPassword)
}
