// internal/normalize/categories.go
package normalize

// CategoryEntry pairs a category label with the title keywords that map to
// it. Entries are matched in order; the first keyword hit wins and unmatched
// titles fall through to "Other".
type CategoryEntry struct {
	Category string
	Keywords []string
}

// DefaultCategoryTable returns the built-in keyword table. The database seed
// copies it into category_rules, and the normalizer falls back to it when the
// table is empty.
func DefaultCategoryTable() []CategoryEntry {
	return []CategoryEntry{
		{
			Category: "Electronics",
			Keywords: []string{
				"laptop", "tablet", "headphone", "earbud", "speaker", "tv",
				"monitor", "camera", "usb", "hdmi", "charger", "cable",
				"phone", "smartphone", "echo", "kindle", "router", "ssd",
				"keyboard", "mouse", "webcam", "drone", "smartwatch",
			},
		},
		{
			Category: "Home & Kitchen",
			Keywords: []string{
				"kitchen", "cookware", "knife", "pan", "pot", "blender",
				"mixer", "coffee", "vacuum", "air fryer", "instant pot",
				"mattress", "pillow", "sheet", "towel", "furniture", "lamp",
				"curtain", "storage", "organizer",
			},
		},
		{
			Category: "Beauty & Personal Care",
			Keywords: []string{
				"makeup", "lipstick", "mascara", "skincare", "serum",
				"moisturizer", "shampoo", "conditioner", "hair dryer",
				"straightener", "razor", "shaver", "trimmer", "perfume",
				"cologne", "lotion", "sunscreen",
			},
		},
		{
			Category: "Fashion",
			Keywords: []string{
				"shirt", "t-shirt", "hoodie", "jacket", "jeans", "dress",
				"skirt", "shoes", "sneaker", "boot", "sandal", "sock",
				"underwear", "handbag", "wallet", "sunglasses", "watch",
				"jewelry", "necklace", "ring",
			},
		},
		{
			Category: "Toys & Games",
			Keywords: []string{
				"toy", "lego", "puzzle", "board game", "doll", "action figure",
				"nerf", "plush", "playset", "video game", "nintendo",
				"playstation", "xbox", "controller",
			},
		},
		{
			Category: "Books & Media",
			Keywords: []string{
				"book", "novel", "paperback", "hardcover", "audiobook",
				"ebook", "comic", "manga", "vinyl", "blu-ray", "dvd",
				"magazine",
			},
		},
		{
			Category: "Sports & Outdoors",
			Keywords: []string{
				"fitness", "dumbbell", "yoga", "treadmill", "bike", "bicycle",
				"camping", "tent", "hiking", "fishing", "golf", "basketball",
				"soccer", "tennis", "running", "kayak", "cooler",
			},
		},
		{
			Category: "Pet Supplies",
			Keywords: []string{
				"dog", "cat", "pet", "puppy", "kitten", "leash", "collar",
				"litter", "aquarium", "bird", "hamster", "treats", "kibble",
			},
		},
		{
			Category: "Office Supplies",
			Keywords: []string{
				"office", "desk", "chair", "printer", "ink", "toner", "paper",
				"notebook", "pen", "pencil", "stapler", "binder", "planner",
				"whiteboard",
			},
		},
		{
			Category: "Health & Wellness",
			Keywords: []string{
				"vitamin", "supplement", "protein", "probiotic", "thermometer",
				"blood pressure", "massage", "massager", "first aid",
				"bandage", "heating pad", "humidifier", "air purifier",
				"scale",
			},
		},
	}
}
