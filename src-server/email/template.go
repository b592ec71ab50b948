package email

type Template string

const (
	TEMPLATE_REGISTRATION = Template("REGISTRATION")
	// used when the payment gate is down and the link will be sent later
	TEMPLATE_REGISTRATION_WITHOUT_PAYMENT_LINK = Template("REGISTRATION_WITHOUT_PAYMENT_LINK")
	TEMPLATE_RECEIPT                           = Template("RECEIPT")
)

var templateSubjects = map[Template]string{
	TEMPLATE_REGISTRATION:                      "Registration confirmation",
	TEMPLATE_REGISTRATION_WITHOUT_PAYMENT_LINK: "Registration confirmation",
	TEMPLATE_RECEIPT:                           "Registration fee receipt",
}

var templateBodies = map[Template]string{
	TEMPLATE_REGISTRATION: `Dear ${full_name},

thank you for registering for the conference.

To complete your registration, please pay the registration fee through the
payment gate:

    ${payment_link}

The link stays valid for a limited time. If it expires, register again or
contact us at the address below.

See you at the conference,
the organizers
`,
	TEMPLATE_REGISTRATION_WITHOUT_PAYMENT_LINK: `Dear ${full_name},

thank you for registering for the conference.

We will send you the payment instructions for the registration fee in a
separate email.

See you at the conference,
the organizers
`,
	TEMPLATE_RECEIPT: `Dear ${full_name},

we have received your payment of the registration fee.

    Amount paid: ${price}
    Registration ID: ${order_number}

Invoicing details we have on file:

    ${invoicing_address_line_1}
    ${invoicing_address_line_2}
    ${invoicing_address_city} ${invoicing_address_zip_code}
    ${invoicing_address_country}
    VAT: ${invoicing_vat_number}

See you at the conference,
the organizers
`,
}
