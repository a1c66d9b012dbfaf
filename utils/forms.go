// File: /utils/forms.go
package utils

import (
	"strings"

	"vanlife-api/models"
)

type RegistrationForm struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// ValidateRegistration checks presence, lengths and email shape. Uniqueness
// and password length are checked by the caller, in that order.
func ValidateRegistration(p Payload) (RegistrationForm, *Rejection) {
	form := RegistrationForm{
		Name:     Capitalize(p.Text("name")),
		Surname:  Capitalize(p.Text("surname")),
		Email:    strings.ToLower(p.Text("email")),
		Password: p.Verbatim("password"),
	}
	if form.Name == "" || form.Surname == "" || form.Email == "" || form.Password == "" {
		return form, Missing("")
	}
	if r := checkPersonLengths(form.Name, form.Surname, form.Email, ""); r != nil {
		return form, r
	}
	if r := CheckEmail(form.Email, FlagEmail); r != nil {
		return form, r
	}
	return form, nil
}

type LoginForm struct {
	Email    string
	Password string
}

func ValidateLogin(p Payload) (LoginForm, *Rejection) {
	form := LoginForm{
		Email:    strings.ToLower(p.Text("email")),
		Password: p.Verbatim("password"),
	}
	if form.Email == "" || form.Password == "" {
		return form, Missing("")
	}
	return form, nil
}

type ProfileForm struct {
	Name    string
	Surname string
}

// ValidateProfile checks a name/surname update against the stored user.
func ValidateProfile(p Payload, current models.User) (ProfileForm, *Rejection) {
	form := ProfileForm{
		Name:    Capitalize(p.Text("name")),
		Surname: Capitalize(p.Text("surname")),
	}
	if form.Name == "" || form.Surname == "" {
		return form, Missing("")
	}
	if r := CheckLength("Name", form.Name, models.UserNameLen, FlagUser); r != nil {
		return form, r
	}
	if r := CheckLength("Surname", form.Surname, models.UserSurnameLen, FlagUser); r != nil {
		return form, r
	}
	if form.Name == current.Name && form.Surname == current.Surname {
		return form, BadRequest("No modifications detected", "Data not altered", FlagUser)
	}
	return form, nil
}

// ValidateNewPassword checks the replacement password of a change or reset.
func ValidateNewPassword(p Payload, flag string) (string, *Rejection) {
	password := p.Verbatim("newPassword")
	if password == "" {
		return "", BadRequest("Enter the new password", "Required data missing", flag)
	}
	if r := CheckPassword(password, flag); r != nil {
		return "", r
	}
	return password, nil
}

type VanForm struct {
	Name        string
	Description string
	Type        models.VanType
	PricePerDay int
}

// SameAs reports whether applying the form would leave the van unchanged.
func (f VanForm) SameAs(v models.Van) bool {
	return f.Name == v.Name && f.Description == v.Description &&
		f.Type == v.Type && f.PricePerDay == v.PricePerDay
}

func (f VanForm) Apply(v *models.Van) {
	v.Name = f.Name
	v.Description = f.Description
	v.Type = f.Type
	v.PricePerDay = f.PricePerDay
}

func ValidateVanForm(p Payload) (VanForm, *Rejection) {
	form := VanForm{
		Name:        p.Text("name"),
		Description: p.Text("description"),
	}
	typ := p.Text("type")
	if form.Name == "" || form.Description == "" || typ == "" || !p.Present("pricePerDay") {
		return form, Missing(FlagData)
	}
	if r := CheckLength("Name", form.Name, models.VanNameLen, FlagData); r != nil {
		return form, r
	}
	if r := CheckLength("Description", form.Description, models.VanDescriptionLen, FlagData); r != nil {
		return form, r
	}
	t, r := CheckVanType(typ, FlagData)
	if r != nil {
		return form, r
	}
	form.Type = t
	price, r := CheckVanPrice(p.Raw("pricePerDay"), FlagData)
	if r != nil {
		return form, r
	}
	form.PricePerDay = price
	return form, nil
}

type BookingForm struct {
	LesseeName       string
	LesseeSurname    string
	LesseeEmail      string
	RentCommencement models.Date
	RentExpiration   models.Date
	Price            int
}

// ValidateBooking checks a rental request for a van priced pricePerDay,
// with today being the server's civil date.
func ValidateBooking(p Payload, pricePerDay int, today models.Date) (BookingForm, *Rejection) {
	form := BookingForm{
		LesseeName:    Capitalize(p.Text("lesseeName")),
		LesseeSurname: Capitalize(p.Text("lesseeSurname")),
		LesseeEmail:   strings.ToLower(p.Text("lesseeEmail")),
	}
	if form.LesseeName == "" || form.LesseeSurname == "" || form.LesseeEmail == "" ||
		!p.Present("rentCommencement") || !p.Present("rentExpiration") {
		return form, Missing("")
	}
	if r := CheckLength("Name", form.LesseeName, models.LesseeNameLen, ""); r != nil {
		return form, r
	}
	if r := CheckLength("Surname", form.LesseeSurname, models.LesseeSurnameLen, ""); r != nil {
		return form, r
	}
	if r := CheckLength("Email", form.LesseeEmail, models.LesseeEmailLen, ""); r != nil {
		return form, r
	}
	if r := CheckEmail(form.LesseeEmail, ""); r != nil {
		return form, r
	}
	start, r := ParseDate(p.Raw("rentCommencement"))
	if r != nil {
		return form, r
	}
	end, r := ParseDate(p.Raw("rentExpiration"))
	if r != nil {
		return form, r
	}
	if start.Before(today.AddDays(1)) {
		return form, BadRequest("Inadmissible commencement date", "Inadmissible date", "")
	}
	if !start.Before(end) {
		return form, BadRequest("Inadmissible dates", "Inadmissible date", "")
	}
	form.RentCommencement, form.RentExpiration = start, end

	price, ok := CoerceInt(p.Raw("price"))
	if !ok || price < 1 || price < pricePerDay {
		return form, BadRequest("Invalid price", "Invalid price", "")
	}
	if price > models.MaxPrice {
		return form, BadRequest("Price too large", "Invalid price", "")
	}
	if price != start.DaysUntil(end)*pricePerDay {
		return form, BadRequest("Price miscalculated", "Wrong price", "")
	}
	form.Price = price
	return form, nil
}

type ReviewForm struct {
	Author string
	Text   string
	Rate   int
}

func ValidateReview(p Payload) (ReviewForm, *Rejection) {
	form := ReviewForm{
		Author: p.Text("author"),
		Text:   p.Text("review"),
	}
	if form.Author == "" || form.Text == "" || !p.Present("rating") {
		return form, Missing("")
	}
	if r := CheckLength("Author", form.Author, models.ReviewAuthorLen, ""); r != nil {
		return form, r
	}
	if r := CheckLength("Review", form.Text, models.ReviewTextLen, ""); r != nil {
		return form, r
	}
	rate, ok := CoerceInt(p.Raw("rating"))
	if !ok {
		return form, BadRequest("Invalid rating format", "Inadmissible rating", "")
	}
	if rate < 1 || rate > 5 {
		return form, BadRequest("Rating must be 1 to 5", "Inadmissible rating", "")
	}
	form.Rate = rate
	return form, nil
}

func checkPersonLengths(name, surname, email, flag string) *Rejection {
	if r := CheckLength("Name", name, models.UserNameLen, flag); r != nil {
		return r
	}
	if r := CheckLength("Surname", surname, models.UserSurnameLen, flag); r != nil {
		return r
	}
	return CheckLength("Email", email, models.UserEmailLen, flag)
}
