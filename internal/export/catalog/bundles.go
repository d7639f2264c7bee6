package catalog

// Bundle ids.
const (
	GuestList       = "guest-list"
	GuestAddOns     = "guest-addons"
	Itineraries     = "itineraries"
	Announcements   = "announcements"
	Messages        = "messages"
	ModuleResponses = "module-responses"
	ActivityLog     = "activity-log"
	GuestUploads    = "guest-uploads"
	EventMedia      = "event-media"
	AnalyticsReport = "analytics-report"
)

func col(header string, keys ...string) Column {
	return Column{Header: header, Keys: keys}
}

// Default returns the built-in bundle catalog.
func Default() *Catalog {
	return New(
		BundleDescriptor{
			ID:          GuestList,
			Name:        "Guest List",
			Kind:        KindTabular,
			Category:    "Guests",
			Description: "Every registered guest with contact details and registration answers",
			Columns: []Column{
				col("First Name", "first_name", "firstName", "given_name"),
				col("Last Name", "last_name", "lastName", "surname", "family_name"),
				col("Email", "email", "email_address", "emailAddress"),
				col("Phone", "phone", "phone_number", "phoneNumber", "mobile"),
				col("Organisation", "organisation", "organization", "company"),
				col("Job Title", "job_title", "jobTitle", "title"),
				col("Group", "guest_group", "guestGroup", "group"),
				col("Dietary Requirements", "profile.dietaryRequirements", "profile.dietary_requirements", "profile.dietary"),
				col("T-Shirt Size", "profile.tshirtSize", "profile.tshirt_size"),
				col("Registered At", "created_at", "createdAt"),
			},
			SizeEstimate: "~50 KB",
		},
		BundleDescriptor{
			ID:          GuestAddOns,
			Name:        "Guest Add-ons",
			Kind:        KindTabular,
			Category:    "Add-ons",
			Description: "Add-ons selected by each guest",
			Columns: []Column{
				col("Guest", "guest_name", "guestName"),
				col("Email", "guest_email", "guestEmail", "email"),
				col("Add-on", "add_on_name", "addon_name", "addOnName", "name"),
				col("Quantity", "quantity", "qty"),
				col("Unit Price", "unit_price", "unitPrice", "price"),
				col("Currency", "currency"),
				col("Status", "status"),
			},
			SizeEstimate: "~10 KB",
		},
		BundleDescriptor{
			ID:          Itineraries,
			Name:        "Itineraries",
			Kind:        KindTabular,
			Category:    "Itineraries",
			Description: "Agenda items with times and locations",
			Columns: []Column{
				col("Title", "title", "name"),
				col("Description", "description", "details"),
				col("Location", "location", "venue"),
				col("Starts At", "starts_at", "startsAt", "start_time"),
				col("Ends At", "ends_at", "endsAt", "end_time"),
				col("Attachment", "attachment_url", "attachmentUrl"),
			},
			SizeEstimate: "~5 KB",
		},
		BundleDescriptor{
			ID:          Announcements,
			Name:        "Announcements",
			Kind:        KindTabular,
			Category:    "Communications",
			Description: "Broadcast announcements and their audiences",
			Columns: []Column{
				col("Title", "title", "subject"),
				col("Body", "body", "message", "content"),
				col("Audience", "audience", "target"),
				col("Sent At", "sent_at", "sentAt", "created_at"),
				col("Image", "image_url", "imageUrl"),
			},
			SizeEstimate: "~5 KB",
		},
		BundleDescriptor{
			ID:          Messages,
			Name:        "Messages",
			Kind:        KindTabular,
			Category:    "Communications",
			Description: "Direct messages between organisers and guests",
			Columns: []Column{
				col("Guest", "guest_name", "guestName"),
				col("Email", "guest_email", "guestEmail"),
				col("Sender", "sender", "from"),
				col("Channel", "channel"),
				col("Message", "body", "message", "content"),
				col("Sent At", "sent_at", "sentAt", "created_at"),
				col("Read At", "read_at", "readAt"),
			},
			SizeEstimate: "~100 KB",
		},
		BundleDescriptor{
			ID:          ModuleResponses,
			Name:        "Module Responses",
			Kind:        KindTabular,
			Category:    "Engagement",
			Description: "Guest answers to polls, ratings, questions and uploads",
			Columns: []Column{
				col("Guest", "guest_name", "guestName"),
				col("Email", "guest_email", "guestEmail"),
				col("Module", "module_title", "moduleTitle"),
				col("Type", "module_type", "moduleType"),
				col("Rating", "rating"),
				col("Comment", "comment"),
				col("Answer", "answer"),
				col("File", "file_url"),
				col("Submitted At", "submitted_at", "submittedAt", "created_at"),
			},
			SizeEstimate: "~50 KB",
		},
		BundleDescriptor{
			ID:          ActivityLog,
			Name:        "Activity Log",
			Kind:        KindTabular,
			Category:    "Activity",
			Description: "Audit trail of changes made to the event",
			Columns: []Column{
				col("Actor", "actor", "user"),
				col("Action", "action"),
				col("Entity Type", "entity_type", "entityType"),
				col("Entity ID", "entity_id", "entityId"),
				col("Details", "details"),
				col("Occurred At", "occurred_at", "occurredAt", "created_at"),
			},
			SizeEstimate: "~200 KB",
		},
		BundleDescriptor{
			ID:           GuestUploads,
			Name:         "Guest Uploads",
			Kind:         KindArchive,
			Category:     "Media",
			Description:  "Files uploaded by guests through media modules",
			SizeEstimate: "varies",
		},
		BundleDescriptor{
			ID:           EventMedia,
			Name:         "Event Media",
			Kind:         KindArchive,
			Category:     "Media",
			Description:  "Announcement images and itinerary attachments",
			SizeEstimate: "varies",
		},
		BundleDescriptor{
			ID:           AnalyticsReport,
			Name:         "Analytics Report",
			Kind:         KindReport,
			Category:     "Reports",
			Description:  "Multi-page PDF summarising engagement across the event",
			SizeEstimate: "~200 KB",
		},
	)
}
