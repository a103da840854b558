package constants

// Section headers as they appear in the notification body. Matching is
// exact-substring: a reworded header silently yields an empty section.
const (
	SectionEvent       = "イベント情報"
	SectionReservation = "ご予約情報"
	SectionCustomer    = "お客様情報"
	SectionSurvey      = "アンケート"
	SectionStore       = "取り扱い店舗"
)

// Field labels, one per "label：value" line. The sender localizes these;
// any label outside this set is not extracted.
const (
	LabelEventName     = "イベント名"
	LabelEventDate     = "開催日"
	LabelEventTime     = "時間"
	LabelEventVenue    = "会場"
	LabelEventURL      = "URL"
	LabelDesiredDate   = "ご希望日"
	LabelDesiredTime   = "ご希望時間"
	LabelCustomerName  = "お名前"
	LabelFurigana      = "フリガナ"
	LabelEmail         = "メールアドレス"
	LabelPhone         = "電話番号"
	LabelAge           = "年齢"
	LabelMonthlyRent   = "毎月の家賃"
	LabelMonthlyPay    = "月々の返済額"
	LabelPostalCode    = "郵便番号"
	LabelAddress       = "ご住所"
	LabelComments      = "ご意見・ご質問等"
	LabelLeadSource    = "ご予約のきっかけ"
	LabelStoreName     = "展示場名"
	LabelStoreAddress  = "所在地"
	LabelBusinessHours = "営業時間"
	LabelClosedDays    = "定休日"
)

// Survey questions, wrapped in ▼ markers inside the survey section.
const (
	QuestionHousingType   = "現在のお住まい"
	QuestionConsideration = "ご検討時期"
)
