// Package content holds the static marketing catalog rendered on the home page.
package content

import "strings"

// MinTopUpAmount is the smallest top-up accepted by the form, in rubles.
const MinTopUpAmount = 100

type Region struct {
	Code      string
	Name      string
	Flag      string
	PriceFrom int
}

type Feature struct {
	Icon        string
	Title       string
	Description string
}

type Review struct {
	Name   string
	Rating int
	Text   string
}

type FAQ struct {
	Question string
	Answer   string
}

type Contact struct {
	Title string
	Icon  string
	URL   string
}

var Regions = []Region{
	{Code: "TR", Name: "Турция", Flag: "🇹🇷", PriceFrom: 500},
	{Code: "AR", Name: "Аргентина", Flag: "🇦🇷", PriceFrom: 600},
	{Code: "KZ", Name: "Казахстан", Flag: "🇰🇿", PriceFrom: 400},
	{Code: "US", Name: "США", Flag: "🇺🇸", PriceFrom: 800},
}

var Features = []Feature{
	{Icon: "zap", Title: "Быстро", Description: "Пополнение за 5 минут"},
	{Icon: "globe", Title: "Любой регион", Description: "Работаем со всеми странами"},
	{Icon: "shield", Title: "Безопасно", Description: "Гарантия возврата"},
	{Icon: "dollar-sign", Title: "Выгодно", Description: "Лучшие цены на рынке"},
}

var Reviews = []Review{
	{Name: "Алексей М.", Rating: 5, Text: "Быстрое пополнение, все прошло отлично!"},
	{Name: "Мария К.", Rating: 5, Text: "Сменила регион за 10 минут, рекомендую!"},
	{Name: "Дмитрий П.", Rating: 5, Text: "Лучший сервис, пользуюсь уже год"},
}

var FAQs = []FAQ{
	{Question: "Как быстро происходит пополнение?", Answer: "Обычно пополнение занимает от 5 до 15 минут после подтверждения оплаты."},
	{Question: "Безопасно ли менять регион аккаунта?", Answer: "Да, мы используем официальные методы смены региона через поддержку Steam."},
	{Question: "Какие способы оплаты вы принимаете?", Answer: "Принимаем карты РФ, СБП, электронные кошельки и криптовалюту."},
	{Question: "Есть ли гарантия возврата?", Answer: "Да, если услуга не была оказана, мы возвращаем 100% суммы."},
}

var TopUpPresets = []int{500, 1000, 2000, 3000, 5000, 10000}

var Contacts = []Contact{
	{Title: "Telegram", Icon: "send", URL: "https://t.me/"},
	{Title: "Email", Icon: "mail", URL: "mailto:support@ge.pay"},
	{Title: "WhatsApp", Icon: "message-circle", URL: "https://wa.me/"},
}

// FindRegion looks a region up by code or display name, case-insensitively.
func FindRegion(value string) (Region, bool) {
	value = strings.TrimSpace(value)
	for _, r := range Regions {
		if strings.EqualFold(r.Code, value) || strings.EqualFold(r.Name, value) {
			return r, true
		}
	}
	return Region{}, false
}
