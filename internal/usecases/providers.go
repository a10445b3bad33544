package usecases

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"infobot/internal/infrastructure"
)

const divider = "━━━━━━━━━━━━━━━━━━"

// clean normalizes a provider field for HTML output: zero-width junk and
// runs of whitespace collapse, empty values become "N/A".
func clean(s string) string {
	s = strings.ReplaceAll(s, "​", "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "N/A"
	}
	return html.EscapeString(s)
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func avail(ok bool) string {
	if ok {
		return "Available"
	}
	return "Not Available"
}

// lookupProviders is the full feature table in menu order. The endpoints and
// response shapes are opaque third-party contracts; each Format knows just
// enough of its own provider's schema to render records.
func lookupProviders() []*Provider {
	return []*Provider{
		telegramIDProvider(),
		indiaNumberProvider(),
		pakNumberProvider(),
		pincodeProvider(),
		vehicleProvider(),
		aadhaarProvider(),
		icmrProvider(),
		ifscProvider(),
		upiProvider(),
		rationProvider(),
		truecallerProvider(),
	}
}

func telegramIDProvider() *Provider {
	return &Provider{
		Button:   "👤 Telegram ID Info",
		Category: "TELEGRAM_ID",
		Prompt:   "📩 Send Telegram User ID (numeric):",
		Progress: "🔍 Fetching Telegram user information...",
		Empty:    "❌ No data found for this Telegram ID.",
		Pattern:  regexp.MustCompile(`^\d+$`),
		Invalid:  "⚠️ Invalid Telegram ID. Please enter a numeric user ID.",
		URL: func(q string) string {
			return "https://tg-info-neon.vercel.app/user-details?user=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatTelegramID,
	}
}

func formatTelegramID(raw json.RawMessage, query string) ([]string, bool) {
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID              json.Number `json:"id"`
			FirstName       string      `json:"first_name"`
			LastName        string      `json:"last_name"`
			IsBot           bool        `json:"is_bot"`
			IsActive        bool        `json:"is_active"`
			FirstMsgDate    string      `json:"first_msg_date"`
			LastMsgDate     string      `json:"last_msg_date"`
			TotalMsgCount   json.Number `json:"total_msg_count"`
			TotalGroups     json.Number `json:"total_groups"`
			AdmInGroups     json.Number `json:"adm_in_groups"`
			MsgInGroups     json.Number `json:"msg_in_groups_count"`
			NamesCount      json.Number `json:"names_count"`
			UsernamesCount  json.Number `json:"usernames_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || !resp.Success {
		return nil, false
	}
	d := resp.Data

	fullName := clean(strings.TrimSpace(d.FirstName + " " + d.LastName))
	kind := "👤"
	if d.IsBot {
		kind = "🤖"
	}

	out := fmt.Sprintf(`
%s <b>Telegram User Information</b>
%s
🆔 <b>User ID:</b> <code>%s</code>
👤 <b>Full Name:</b> %s
%s <b>Is Bot:</b> %t
%s <b>Active Status:</b> %t

📅 <b>First Message:</b> %s
📅 <b>Last Message:</b> %s

💬 <b>Total Messages:</b> %s
👥 <b>Total Groups:</b> %s
👨‍💼 <b>Admin in Groups:</b> %s
💬 <b>Messages in Groups:</b> %s

🔄 <b>Name Changes:</b> %s
@️ <b>Username Changes:</b> %s
%s`,
		kind, divider,
		clean(d.ID.String()), fullName,
		kind, d.IsBot,
		mark(d.IsActive), d.IsActive,
		clean(d.FirstMsgDate), clean(d.LastMsgDate),
		clean(d.TotalMsgCount.String()), clean(d.TotalGroups.String()),
		clean(d.AdmInGroups.String()), clean(d.MsgInGroups.String()),
		clean(d.NamesCount.String()), clean(d.UsernamesCount.String()),
		divider)
	return []string{out}, true
}

func indiaNumberProvider() *Provider {
	return &Provider{
		Button:   "🇮🇳 India Number Info",
		Category: "IND_NUMBER",
		Prompt:   "📱 Send 10-digit Indian mobile number:",
		Progress: "🔍 Searching for information...",
		Empty:    "📭 No Information Found!",
		Pattern:  regexp.MustCompile(`^\d{10}$`),
		Invalid:  "⚠️ Invalid 10-digit number.",
		URL: func(q string) string {
			return "http://osintx.info/API/krobetahack.php?key=P6NW6D1&type=mobile&term=" + q
		},
		Timeout: 30 * time.Second,
		Format:  formatIndiaNumber,
	}
}

type indiaRecord struct {
	ID         json.Number `json:"id"`
	Mobile     string      `json:"mobile"`
	Name       string      `json:"name"`
	FatherName string      `json:"father_name"`
	Address    string      `json:"address"`
	AltMobile  string      `json:"alt_mobile"`
	Circle     string      `json:"circle"`
	IDNumber   string      `json:"id_number"`
	Email      string      `json:"email"`
}

// cleanAddress splits the provider's "!"-delimited address fields and drops
// exact duplicates while preserving order.
func cleanAddress(raw string) string {
	parts := strings.Split(raw, "!")
	seen := make(map[string]bool)
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return "N/A"
	}
	return clean(strings.Join(kept, ", "))
}

func formatIndiaNumber(raw json.RawMessage, query string) ([]string, bool) {
	// The endpoint answers with either a bare array or {"data": [...]}.
	var records []indiaRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		var wrapper struct {
			Data []indiaRecord `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, false
		}
		records = wrapper.Data
	}
	if len(records) == 0 {
		return nil, false
	}

	msgs := []string{fmt.Sprintf(`
📱 <b>Indian Number Lookup Results</b>
🔍 <b>Queried Number:</b> %s
📊 <b>Total Records Found:</b> %d
%s`, query, len(records), divider)}

	for i, rec := range records {
		msgs = append(msgs, fmt.Sprintf(`
📋 <b>Record #%d</b>
👤 <b>Name:</b> %s
👨‍👩‍👦 <b>Father's Name:</b> %s
📱 <b>Mobile:</b> %s
📱 <b>Alt Mobile:</b> %s
📡 <b>Circle:</b> %s
🆔 <b>ID Number:</b> %s
📧 <b>Email:</b> %s
🏠 <b>Address:</b> %s
%s`, i+1,
			clean(rec.Name), clean(rec.FatherName),
			clean(rec.Mobile), clean(rec.AltMobile),
			clean(rec.Circle), clean(rec.IDNumber), clean(rec.Email),
			cleanAddress(rec.Address),
			divider))
	}

	msgs = append(msgs, fmt.Sprintf(`
✅ <b>Search completed successfully!</b>
💳 <b>Credits Used:</b> 1
📊 <b>Total Records:</b> %d`, len(records)))
	return msgs, true
}

func pakNumberProvider() *Provider {
	return &Provider{
		Button:   "📱 Pakistan Number Info",
		Category: "PAK_NUMBER",
		Prompt:   "📲 Send Pakistan number with country code (923XXXXXXXXX):",
		Progress: "🔍 Searching for Pakistan number information...",
		Empty:    "❌ No data found for this Pakistan number.",
		Pattern:  regexp.MustCompile(`^923\d{9}$`),
		Invalid:  "⚠️ Invalid Pakistan number. Please enter in format: 923XXXXXXXXX",
		URL: func(q string) string {
			return "https://pak-num-api.vercel.app/search?number=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatPakNumber,
	}
}

func formatPakNumber(raw json.RawMessage, query string) ([]string, bool) {
	var resp struct {
		Results []struct {
			Name    string `json:"Name"`
			Mobile  string `json:"Mobile"`
			CNIC    string `json:"CNIC"`
			Address string `json:"Address"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Results) == 0 {
		return nil, false
	}

	msgs := []string{fmt.Sprintf(`
📱 <b>Pakistan Number Lookup Results</b>
🔍 <b>Queried Number:</b> %s
📊 <b>Total Records Found:</b> %d
%s`, query, len(resp.Results), divider)}

	for i, rec := range resp.Results {
		msgs = append(msgs, fmt.Sprintf(`
📋 <b>Record #%d</b>
👤 <b>Name:</b> %s
📱 <b>Mobile:</b> %s
🇵🇰 <b>CNIC:</b> %s
🏠 <b>Address:</b> %s
%s`, i+1, clean(rec.Name), clean(rec.Mobile), clean(rec.CNIC), clean(rec.Address), divider))
	}

	msgs = append(msgs, fmt.Sprintf(`
✅ <b>Search completed successfully!</b>
💳 <b>Credits Used:</b> 1
📊 <b>Total Records:</b> %d`, len(resp.Results)))
	return msgs, true
}

func pincodeProvider() *Provider {
	return &Provider{
		Button:   "📮 Pincode Info",
		Category: "PINCODE",
		Prompt:   "📮 Send 6-digit pincode:",
		Progress: "🔍 Searching for pincode information...",
		Empty:    "❌ No data found for this pincode.",
		Pattern:  regexp.MustCompile(`^\d{6}$`),
		Invalid:  "⚠️ Invalid pincode. Please enter a 6-digit pincode.",
		URL: func(q string) string {
			return "https://pincode-info-j4tnx.vercel.app/pincode=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatPincode,
	}
}

func formatPincode(raw json.RawMessage, query string) ([]string, bool) {
	var resp []struct {
		Status     string `json:"Status"`
		Message    string `json:"Message"`
		PostOffice []struct {
			Name           string `json:"Name"`
			BranchType     string `json:"BranchType"`
			DeliveryStatus string `json:"DeliveryStatus"`
			District       string `json:"District"`
			Division       string `json:"Division"`
			Region         string `json:"Region"`
			Block          string `json:"Block"`
			State          string `json:"State"`
			Country        string `json:"Country"`
		} `json:"PostOffice"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp) == 0 {
		return nil, false
	}
	first := resp[0]
	if first.Status != "Success" || len(first.PostOffice) == 0 {
		return nil, false
	}

	msgs := []string{fmt.Sprintf(`
📮 <b>Pincode Information</b>
🔍 <b>Pincode:</b> %s
📊 <b>%s</b>
%s`, query, clean(first.Message), divider)}

	for i, office := range first.PostOffice {
		msgs = append(msgs, fmt.Sprintf(`
📋 <b>Post Office #%d</b>
🏢 <b>Name:</b> %s
🏛️ <b>Type:</b> %s
%s <b>Delivery Status:</b> %s
📍 <b>District:</b> %s
🗂️ <b>Division:</b> %s
🌐 <b>Region:</b> %s
🏘️ <b>Block:</b> %s
🏛️ <b>State:</b> %s
🌍 <b>Country:</b> %s
%s`, i+1,
			clean(office.Name), clean(office.BranchType),
			mark(office.DeliveryStatus == "Delivery"), clean(office.DeliveryStatus),
			clean(office.District), clean(office.Division), clean(office.Region),
			clean(office.Block), clean(office.State), clean(office.Country),
			divider))
	}

	msgs = append(msgs, fmt.Sprintf(`
✅ <b>Search completed successfully!</b>
💳 <b>Credits Used:</b> 1
📊 <b>Total Post Offices:</b> %d`, len(first.PostOffice)))
	return msgs, true
}

func vehicleProvider() *Provider {
	return &Provider{
		Button:    "🚘 Vehicle Info",
		Category:  "VEHICLE",
		Prompt:    "🚘 Send vehicle registration number (e.g., MH01AB1234):",
		Progress:  "🔍 Searching for vehicle information...",
		Empty:     "❌ No data found for this vehicle registration number.",
		Pattern:   regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z]{1,2}\d{4}$`),
		Invalid:   "⚠️ Invalid vehicle registration number. Please enter in format like MH01AB1234",
		Normalize: strings.ToUpper,
		URL: func(q string) string {
			return "https://rc-info-ng.vercel.app/?rc=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatVehicle,
	}
}

func formatVehicle(raw json.RawMessage, query string) ([]string, bool) {
	var d struct {
		RCNumber         string `json:"rc_number"`
		OwnerName        string `json:"owner_name"`
		FatherName       string `json:"father_name"`
		ModelName        string `json:"model_name"`
		MakerModel       string `json:"maker_model"`
		VehicleClass     string `json:"vehicle_class"`
		FuelType         string `json:"fuel_type"`
		RegistrationDate string `json:"registration_date"`
		InsuranceCompany string `json:"insurance_company"`
		InsuranceNo      string `json:"insurance_no"`
		InsuranceExpiry  string `json:"insurance_expiry"`
		FitnessUpto      string `json:"fitness_upto"`
		RTO              string `json:"rto"`
		Address          string `json:"address"`
		City             string `json:"city"`
		Phone            string `json:"phone"`
	}
	if err := json.Unmarshal(raw, &d); err != nil || d.RCNumber == "" {
		return nil, false
	}

	fuel := "🔧"
	switch d.FuelType {
	case "PETROL":
		fuel = "⛽"
	case "DIESEL":
		fuel = "🛢️"
	case "ELECTRIC":
		fuel = "⚡"
	}

	out := fmt.Sprintf(`
🚘 <b>Vehicle Information</b>
%s
📝 <b>Registration Number:</b> <code>%s</code>
👤 <b>Owner Name:</b> %s
👨‍👩‍👦 <b>Father's Name:</b> %s
🏛️ <b>RTO:</b> %s
📍 <b>City:</b> %s
📞 <b>Phone:</b> %s

🚗 <b>Vehicle Details:</b>
🏭 <b>Manufacturer:</b> %s
🛵 <b>Model:</b> %s
🏷️ <b>Class:</b> %s
%s <b>Fuel Type:</b> %s
📅 <b>Registration Date:</b> %s

📋 <b>Insurance Details:</b>
🏢 <b>Company:</b> %s
📄 <b>Policy Number:</b> %s
📅 <b>Expiry Date:</b> %s

📅 <b>Fitness Valid Upto:</b> %s

🏠 <b>Address:</b> %s
%s`,
		divider,
		clean(d.RCNumber), clean(d.OwnerName), clean(d.FatherName),
		clean(d.RTO), clean(d.City), clean(d.Phone),
		clean(d.ModelName), clean(d.MakerModel), clean(d.VehicleClass),
		fuel, clean(d.FuelType), clean(d.RegistrationDate),
		clean(d.InsuranceCompany), clean(d.InsuranceNo), clean(d.InsuranceExpiry),
		clean(d.FitnessUpto), clean(d.Address),
		divider)
	return []string{out}, true
}

func aadhaarProvider() *Provider {
	return &Provider{
		Button:   "🆔 Aadhaar Info",
		Category: "AADHAAR_RAW",
		Prompt:   "🆔 Send 12-digit Aadhaar number (the Aadhaar API is slow, expect a few minutes):",
		Progress: "🔍 Searching for Aadhaar information... (This may take 4-5 minutes)",
		Empty:    "📭 No Aadhaar Data Found!",
		Pattern:  regexp.MustCompile(`^\d{12}$`),
		Invalid:  "⚠️ Invalid Aadhaar number. Please enter a 12-digit Aadhaar number.",
		URL: func(q string) string {
			return "https://numinfoapi.zerovault.workers.dev/search/aadhar?value=" + q + "&key=bugsec"
		},
		// Documented slow dependency; far above the default per-attempt bound.
		Timeout: 300 * time.Second,
		Format:  formatAadhaar,
	}
}

// formatAadhaar relays the payload untyped. The upstream schema changes too
// often to bind fields, so the bot has always shown the raw response.
func formatAadhaar(raw json.RawMessage, query string) ([]string, bool) {
	pretty := raw
	var buf any
	if err := json.Unmarshal(raw, &buf); err == nil {
		if p, err := json.MarshalIndent(buf, "", "  "); err == nil {
			pretty = p
		}
	}
	body := strings.TrimSpace(string(pretty))
	if body == "" || body == "null" || body == "{}" || body == "[]" {
		return nil, false
	}

	masked := query[:4] + "XXXXXXXX" + query[len(query)-2:]
	out := fmt.Sprintf(`
🔍 <b>Raw API Response for Aadhaar:</b> %s
%s
<code>
%s
</code>
%s
✅ <b>Search completed!</b>
💳 <b>Credits Used:</b> 1`,
		masked, divider, html.EscapeString(body), divider)
	return []string{out}, true
}

func icmrProvider() *Provider {
	return &Provider{
		Button:   "🧪 ICMR Number Info",
		Category: "ICMR",
		Prompt:   "🧪 Send 10-digit number for ICMR lookup:",
		Progress: "🔍 Searching for ICMR information...",
		Empty:    "📭 No ICMR Data Found!",
		Pattern:  regexp.MustCompile(`^\d{10}$`),
		Invalid:  "⚠️ Invalid 10-digit number.",
		URL: func(q string) string {
			return "https://raju09.serv00.net/ICMR/ICMR_api.php?phone=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatICMR,
	}
}

func formatICMR(raw json.RawMessage, query string) ([]string, bool) {
	var resp struct {
		Status string      `json:"status"`
		Count  json.Number `json:"count"`
		Data   []struct {
			Name         string      `json:"name"`
			FathersName  string      `json:"fathersName"`
			PhoneNumber  string      `json:"phoneNumber"`
			AadharNumber string      `json:"aadharNumber"`
			Age          json.Number `json:"age"`
			Gender       string      `json:"gender"`
			Address      string      `json:"address"`
			District     string      `json:"district"`
			Pincode      string      `json:"pincode"`
			State        string      `json:"state"`
			Town         string      `json:"town"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Status != "success" || len(resp.Data) == 0 {
		return nil, false
	}

	count := resp.Count.String()
	if count == "" || count == "0" {
		count = fmt.Sprint(len(resp.Data))
	}

	msgs := []string{fmt.Sprintf(`
🧪 <b>ICMR Information Lookup Results</b>
🔍 <b>Phone Number:</b> %s
📊 <b>Total Records Found:</b> %s
%s`, query, count, divider)}

	for i, rec := range resp.Data {
		gender := "🧑"
		switch strings.ToLower(rec.Gender) {
		case "female":
			gender = "👩"
		case "male":
			gender = "👨"
		}
		msgs = append(msgs, fmt.Sprintf(`
📋 <b>Record #%d</b>
%s <b>Name:</b> %s
👨‍👩‍👦 <b>Father's Name:</b> %s
📱 <b>Phone Number:</b> %s
🆔 <b>Aadhaar Number:</b> %s
🎂 <b>Age:</b> %s
%s <b>Gender:</b> %s
🏠 <b>Address:</b> %s
📍 <b>District:</b> %s
🏙️ <b>Town:</b> %s
📮 <b>Pincode:</b> %s
🏛️ <b>State:</b> %s
%s`, i+1,
			gender, clean(rec.Name), clean(rec.FathersName),
			clean(rec.PhoneNumber), clean(rec.AadharNumber),
			clean(rec.Age.String()), gender, clean(rec.Gender),
			clean(rec.Address), clean(rec.District), clean(rec.Town),
			clean(rec.Pincode), clean(rec.State),
			divider))
	}

	msgs = append(msgs, fmt.Sprintf(`
✅ <b>Search completed successfully!</b>
💳 <b>Credits Used:</b> 1
📊 <b>Total Records:</b> %s`, count))
	return msgs, true
}

func ifscProvider() *Provider {
	return &Provider{
		Button:    "🏦 IFSC Code Info",
		Category:  "IFSC",
		Prompt:    "🏦 Send 11-character IFSC code (e.g., SBIN0004843):",
		Progress:  "🔍 Searching for IFSC code information...",
		Empty:     "❌ No data found for this IFSC code.",
		Pattern:   regexp.MustCompile(`^[A-Z]{4}\d{7}$`),
		Invalid:   "⚠️ Invalid IFSC code. Please enter an 11-character code like SBIN0004843.",
		Normalize: strings.ToUpper,
		URL: func(q string) string {
			return "https://ifsc.razorpay.com/" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatIFSC,
	}
}

type bankDetails struct {
	Bank     string `json:"BANK"`
	IFSC     string `json:"IFSC"`
	Branch   string `json:"BRANCH"`
	Address  string `json:"ADDRESS"`
	City     string `json:"CITY"`
	District string `json:"DISTRICT"`
	State    string `json:"STATE"`
	Contact  string `json:"CONTACT"`
	MICR     string `json:"MICR"`
	Centre   string `json:"CENTRE"`
	BankCode string `json:"BANKCODE"`
	ISO3166  string `json:"ISO3166"`
	UPI      bool   `json:"UPI"`
	RTGS     bool   `json:"RTGS"`
	NEFT     bool   `json:"NEFT"`
	IMPS     bool   `json:"IMPS"`
	SWIFT    string `json:"SWIFT"`
}

func (d *bankDetails) render() string {
	swift := d.SWIFT
	if swift == "" {
		swift = "Not Available"
	}
	return fmt.Sprintf(`🏛️ <b>Bank Name:</b> %s
🏢 <b>Branch:</b> %s
🏠 <b>Address:</b> %s
📍 <b>City:</b> %s
🗺️ <b>District:</b> %s
🏛️ <b>State:</b> %s
📞 <b>Contact:</b> %s
🔢 <b>MICR Code:</b> %s
🏛️ <b>Centre:</b> %s
🆔 <b>Bank Code:</b> %s
🌍 <b>ISO Code:</b> %s

💸 <b>Available Services:</b>
%s <b>UPI:</b> %s
%s <b>RTGS:</b> %s
%s <b>NEFT:</b> %s
%s <b>IMPS:</b> %s
%s <b>SWIFT:</b> %s`,
		clean(d.Bank), clean(d.Branch), clean(d.Address),
		clean(d.City), clean(d.District), clean(d.State),
		clean(d.Contact), clean(d.MICR), clean(d.Centre),
		clean(d.BankCode), clean(d.ISO3166),
		mark(d.UPI), avail(d.UPI),
		mark(d.RTGS), avail(d.RTGS),
		mark(d.NEFT), avail(d.NEFT),
		mark(d.IMPS), avail(d.IMPS),
		mark(d.SWIFT != ""), html.EscapeString(swift))
}

func formatIFSC(raw json.RawMessage, query string) ([]string, bool) {
	var d bankDetails
	if err := json.Unmarshal(raw, &d); err != nil || d.IFSC == "" {
		return nil, false
	}

	out := fmt.Sprintf(`
🏦 <b>Bank Information</b>
%s
🆔 <b>IFSC Code:</b> <code>%s</code>
%s
%s`, divider, clean(d.IFSC), d.render(), divider)
	return []string{out}, true
}

func upiProvider() *Provider {
	return &Provider{
		Button:   "💸 UPI ID Info",
		Category: "UPI",
		Prompt:   "💸 Send UPI ID (e.g., someone@sbi):",
		Progress: "🔍 Searching for UPI ID information...",
		Empty:    "❌ No data found for this UPI ID.",
		Pattern:  regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+$`),
		Invalid:  "⚠️ Invalid UPI ID format. Please enter a valid UPI ID (e.g., someone@sbi).",
		URL: func(q string) string {
			return "https://upi-info.vercel.app/api/upi?upi_id=" + q + "&key=456"
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatUPI,
	}
}

func formatUPI(raw json.RawMessage, query string) ([]string, bool) {
	var resp struct {
		VPADetails struct {
			VPA  string `json:"vpa"`
			Name string `json:"name"`
			IFSC string `json:"ifsc"`
		} `json:"vpa_details"`
		BankDetails bankDetails `json:"bank_details_raw"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.VPADetails.VPA == "" {
		return nil, false
	}

	out := fmt.Sprintf(`
💸 <b>UPI ID Information</b>
%s
💳 <b>UPI ID:</b> <code>%s</code>
👤 <b>Account Holder:</b> %s
🆔 <b>IFSC Code:</b> %s

🏦 <b>Bank Details:</b>
%s
%s`, divider,
		clean(resp.VPADetails.VPA), clean(resp.VPADetails.Name), clean(resp.VPADetails.IFSC),
		resp.BankDetails.render(), divider)
	return []string{out}, true
}

func rationProvider() *Provider {
	return &Provider{
		Button:   "📋 Ration Card Info",
		Category: "RATION_CARD",
		Prompt:   "📋 Send 12-digit Aadhaar number linked to ration card:",
		Progress: "🔍 Searching for ration card information...",
		Empty:    "❌ No ration card data found for this Aadhaar number.",
		Pattern:  regexp.MustCompile(`^\d{12}$`),
		Invalid:  "⚠️ Invalid Aadhaar number. Please enter a 12-digit Aadhaar number.",
		URL: func(q string) string {
			return "https://family-members-n5um.vercel.app/fetch?aadhaar=" + q + "&key=paidchx"
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatRation,
	}
}

func formatRation(raw json.RawMessage, query string) ([]string, bool) {
	var d struct {
		RcID          string `json:"rcId"`
		SchemeID      string `json:"schemeId"`
		SchemeName    string `json:"schemeName"`
		Address       string `json:"address"`
		HomeStateName string `json:"homeStateName"`
		HomeDistName  string `json:"homeDistName"`
		AllowedONORC  string `json:"allowed_onorc"`
		DupUIDStatus  string `json:"dup_uid_status"`
		FpsID         string `json:"fpsId"`
		Members       []struct {
			MemberName       string `json:"memberName"`
			RelationshipName string `json:"releationship_name"`
			UID              string `json:"uid"`
		} `json:"memberDetailsList"`
	}
	if err := json.Unmarshal(raw, &d); err != nil || d.RcID == "" {
		return nil, false
	}

	scheme := "📋"
	switch d.SchemeID {
	case "PHH":
		scheme = "🍚"
	case "AY":
		scheme = "🍛"
	}

	msgs := []string{fmt.Sprintf(`
📋 <b>Ration Card Information</b>
%s
🆔 <b>Ration Card ID:</b> %s
%s <b>Scheme:</b> %s (%s)
🏛️ <b>State:</b> %s
📍 <b>District:</b> %s
🏠 <b>Address:</b> %s
✅ <b>Allowed ONORC:</b> %s
🔄 <b>Duplicate UID Status:</b> %s
🏪 <b>FPS ID:</b> %s
%s`, divider,
		clean(d.RcID), scheme, clean(d.SchemeName), clean(d.SchemeID),
		clean(d.HomeStateName), clean(d.HomeDistName), clean(d.Address),
		clean(d.AllowedONORC), clean(d.DupUIDStatus), clean(d.FpsID),
		divider)}

	if len(d.Members) > 0 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\n👨‍👩‍👧‍👦 <b>Family Members (%d)</b>\n%s\n", len(d.Members), divider)
		for i, member := range d.Members {
			rel := "🧑"
			relName := strings.ToUpper(member.RelationshipName)
			switch {
			case relName == "SELF":
				rel = "👤"
			case strings.Contains(relName, "SON"):
				rel = "👨"
			case strings.Contains(relName, "DAUGHTER"):
				rel = "👩"
			case strings.Contains(relName, "FATHER"):
				rel = "👴"
			case strings.Contains(relName, "MOTHER"):
				rel = "👵"
			}
			fmt.Fprintf(&sb, `
📋 <b>Member #%d</b>
%s <b>Name:</b> %s
🔗 <b>Relationship:</b> %s
%s <b>Aadhaar Linked:</b> %s
%s
`, i+1, rel, clean(member.MemberName), clean(member.RelationshipName),
				mark(member.UID == "Yes"), clean(member.UID), divider)
		}
		msgs = append(msgs, sb.String())
	}

	msgs = append(msgs, fmt.Sprintf(`
✅ <b>Search completed successfully!</b>
💳 <b>Credits Used:</b> 1
👨‍👩‍👧‍👦 <b>Total Family Members:</b> %d`, len(d.Members)))
	return msgs, true
}

func truecallerProvider() *Provider {
	return &Provider{
		Button:   "🔍 Truecaller Info",
		Category: "TRUECALLER",
		Prompt:   "📱 Send phone number with country code (e.g., 917078551517):",
		Progress: "🔍 Searching Truecaller information...",
		Empty:    "❌ No data found for this number.",
		Pattern:  regexp.MustCompile(`^\d{10,15}$`),
		Invalid:  "⚠️ Invalid phone number. Please enter a valid number with country code (e.g., 917078551517).",
		URL: func(q string) string {
			return "https://chxphone.vercel.app/lookup?number=" + q
		},
		Timeout: infrastructure.DefaultFetchTimeout,
		Format:  formatTruecaller,
	}
}

func formatTruecaller(raw json.RawMessage, query string) ([]string, bool) {
	var d struct {
		Number      string `json:"number"`
		NameInfoRaw string `json:"name_info_raw"`
		PhotoURL    string `json:"photo_url"`
		Store       struct {
			Circle   string `json:"circle"`
			Country  string `json:"country"`
			Operator string `json:"operator"`
			Type     string `json:"type"`
			Valid    bool   `json:"valid"`
		} `json:"flipcartstore"`
	}
	if err := json.Unmarshal(raw, &d); err != nil || d.Number == "" {
		return nil, false
	}

	valid := "No"
	if d.Store.Valid {
		valid = "Yes"
	}
	name := d.NameInfoRaw
	if name == "" {
		name = "Not available"
	}
	photo := d.PhotoURL
	if photo == "" {
		photo = "Not available"
	}
	operator := d.Store.Operator
	if operator == "" {
		operator = "Not available"
	}

	out := fmt.Sprintf(`
🔍 <b>Truecaller Information</b>
%s
📱 <b>Number:</b> %s
👤 <b>Name:</b> %s
🖼️ <b>Photo:</b> %s

🌐 <b>Country:</b> %s
📡 <b>Circle:</b> %s
📶 <b>Operator:</b> %s
📱 <b>Type:</b> %s
✅ <b>Valid:</b> %s
%s`,
		divider,
		clean(d.Number), html.EscapeString(name), html.EscapeString(photo),
		clean(d.Store.Country), clean(d.Store.Circle), html.EscapeString(operator),
		clean(d.Store.Type), valid,
		divider)
	return []string{out}, true
}
