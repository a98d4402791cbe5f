package viewmodels

type LoginPage struct {
	BaseViewModel
	Email string
}

type RegisterPage struct {
	BaseViewModel
	ID    int
	Name  string
	Email string
}
