package notify

// EmailMessage is the rendered payload handed to the email channel.
// Kind tells the consumer which template to use.
type EmailMessage struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Link      string `json:"link"`
	Kind      string `json:"kind"` // ACCOUNT | PASSWORD
}

// SMSMessage is the rendered payload handed to the SMS channel.
type SMSMessage struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}
