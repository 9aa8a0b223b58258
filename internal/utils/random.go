package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonGivenNames = []string{
	"Budi", "Siti", "Agus", "Dewi", "Rudi", "Sri", "Andi", "Rina", "Joko", "Wati",
	"Hendra", "Yuni", "Bambang", "Ratna", "Eko", "Lestari", "Fajar", "Indah", "Dedi", "Nur",
}

var commonFamilyNames = []string{
	"Santoso", "Wijaya", "Saputra", "Hidayat", "Kusuma", "Pratama", "Setiawan", "Nugroho",
	"Siregar", "Nasution", "Hutapea", "Simanjuntak", "Lubis", "Harahap", "Gunawan", "Halim",
}

// Chinese-Indonesian staff often register the Han form of their name.
var hanNames = []string{"王伟", "李娜", "张敏", "刘洋", "陈静", "林芳", "黄磊", "吴霞"}

func GenerateRandomName() string {
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	if rand.Intn(3) == 0 {
		return given
	}
	return given + " " + commonFamilyNames[rand.Intn(len(commonFamilyNames))]
}

func GenerateRandomStaffName() string {
	if rand.Intn(5) == 0 {
		return hanNames[rand.Intn(len(hanNames))]
	}
	return GenerateRandomName()
}

var roles = []domain.Role{
	domain.RoleStaff,
	domain.RoleStaff,
	domain.RoleStaff,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

// UsernameBase lowercases a display name into ASCII letters and digits.
// Han characters are spelled out in pinyin without tones.
func UsernameBase(name string) string {
	args := pinyin.NewArgs()
	args.Fallback = func(r rune, _ pinyin.Args) []string {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return []string{string(unicode.ToLower(r))}
		}
		return nil
	}

	return strings.Join(pinyin.LazyPinyin(name, args), "")
}

func GenerateUsernameFromName(name string) string {
	username := UsernameBase(name)

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomStaffName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

var (
	genders    = []string{"L", "P"}
	bloodTypes = []string{"A", "B", "AB", "O"}
	diagnoses  = []string{
		"CKD stadium 5",
		"CKD stadium 5 ec nefropati diabetik",
		"CKD stadium 5 ec hipertensi",
		"AKI on CKD",
		"Glomerulonefritis kronik",
	}
	cities = []string{"Medan", "Binjai", "Deli Serdang", "Tebing Tinggi", "Pematangsiantar"}
)

func GenerateRandomPatient() *domain.Patient {
	birthYear := 1945 + rand.Intn(60)

	return &domain.Patient{
		Name:                GenerateRandomName(),
		MedicalRecordNumber: "RM-" + GenerateRandomDigits(6),
		BirthDate:           civil.Date{Year: birthYear, Month: 1, Day: 1}.AddDays(rand.Intn(365)),
		Gender:              genders[rand.Intn(len(genders))],
		Address:             fmt.Sprintf("Jl. Merdeka No. %d, %s", rand.Intn(200)+1, cities[rand.Intn(len(cities))]),
		Phone:               "08" + GenerateRandomDigits(10),
		Diagnosis:           diagnoses[rand.Intn(len(diagnoses))],
		BloodType:           bloodTypes[rand.Intn(len(bloodTypes))],
	}
}

func GenerateRandomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
