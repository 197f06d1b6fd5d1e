package buildings

import (
	"context"
	"errors"

	"campusexplorer/errs"
	"campusexplorer/models"

	"go.uber.org/zap"
)

func str(s string) *string { return &s }

func at(x, y float64) *models.Coordinates { return &models.Coordinates{X: x, Y: y} }

// SeedBuildings is the starting campus catalog. Entries without media get
// the placeholders when they are inserted.
var SeedBuildings = []CreateRequest{
	{
		Key: "library", Name: "Parks Library", Code: "LIB", Category: models.CategoryAcademic,
		Departments: []string{"Library Services", "Research Support", "Study Spaces"},
		Description: "The main library serving Iowa State University, featuring extensive collections, study spaces, and research support services.",
		Hours:       "Mon-Thu: 7:30am-2:00am, Fri: 7:30am-10:00pm",
		Capacity:    "2,500 students", YearBuilt: "1925", Floors: 4,
		Coordinates: at(42, 12),
		Image:       "/assets/images/parks1.jpeg",
		Gallery:     []string{"/assets/images/parks1.jpeg", "/assets/images/parks2.jpg", "/assets/images/parks3.jpeg"},
		Video:       str("/assets/videos/parksvideo.mp4"),
	},
	{
		Key: "beardshear", Name: "Beardshear Hall", Code: "BSH", Category: models.CategoryAdministration,
		Departments: []string{"President's Office", "Registrar", "Admissions"},
		Description: "Historic administration building housing the Office of the President, Registrar, and other central university services.",
		Hours:       "Mon-Fri: 8:00am-5:00pm",
		Capacity:    "200 staff", YearBuilt: "1906", Floors: 3,
		Coordinates: at(75, 8),
	},
	{
		Key: "memorial", Name: "Memorial Union", Code: "MU", Category: models.CategoryStudentLife,
		Departments: []string{"Dining Services", "Student Organizations", "Bookstore"},
		Description: "The heart of student life featuring dining, meeting spaces, bookstore, and various student services.",
		Hours:       "Daily: 6:00am-12:00am",
		Capacity:    "3,000 visitors daily", YearBuilt: "1928", Floors: 4,
		Coordinates: at(50, 40),
	},
	{
		Key: "campanile", Name: "Campanile", Code: "CAMP", Category: models.CategoryLandmark,
		Departments: []string{"Campus Tours", "University Relations"},
		Description: "Iowa State's iconic 110-foot bell tower, a beloved landmark and symbol of the university since 1899.",
		Hours:       "Viewable 24/7, Tours by appointment",
		Capacity:    "Landmark viewing", YearBuilt: "1899", Floors: 1,
		Coordinates: at(15, 56),
	},
	{
		Key: "hilton", Name: "Hilton Coliseum", Code: "HIL", Category: models.CategoryAthletics,
		Departments: []string{"Athletics", "Event Management", "Ticket Office"},
		Description: "Home of Cyclone athletics, hosting basketball games, concerts, and major university events.",
		Hours:       "Event-dependent, Box office: Mon-Fri 9:00am-5:00pm",
		Capacity:    "14,267 seats", YearBuilt: "1971", Floors: 3,
		Coordinates: at(85, 50),
	},
	{
		Key: "carver", Name: "Carver Hall", Code: "CAR", Category: models.CategoryAcademic,
		Departments: []string{"Engineering", "Computer Science", "Technology"},
		Description: "Modern academic building housing engineering and technology programs with state-of-the-art laboratories.",
		Hours:       "Mon-Fri: 7:00am-10:00pm, Sat-Sun: 8:00am-8:00pm",
		Capacity:    "1,800 students", YearBuilt: "1995", Floors: 5,
		Coordinates: at(90, 86),
		Image:       "/assets/images/Carverhall.jpg",
		Gallery:     []string{"/assets/images/carver2.jpeg", "/assets/images/carver0101.jpg"},
	},
	{
		Key: "friley", Name: "Friley Hall", Code: "FRI", Category: models.CategoryResidence,
		Departments: []string{"Residence Life", "Dining Services"},
		Description: "Residence hall providing comfortable living spaces for undergraduate students with dining facilities.",
		Hours:       "24/7 Residential Access",
		Capacity:    "1,200 residents", YearBuilt: "1965", Floors: 8,
		Coordinates: at(8, 80),
	},
	{
		Key: "coover", Name: "Coover Hall", Code: "COV", Category: models.CategoryAcademic,
		Departments: []string{"Electrical Engineering", "Computer Engineering", "Cybersecurity"},
		Description: "State-of-the-art engineering facility featuring advanced laboratories and research spaces.",
		Hours:       "Mon-Fri: 7:00am-11:00pm, Sat-Sun: 8:00am-10:00pm",
		Capacity:    "2,200 students", YearBuilt: "2010", Floors: 6,
		Coordinates: at(45, 20),
	},
	{
		Key: "sukup", Name: "Sukup Hall", Code: "SUK", Category: models.CategoryAcademic,
		Departments: []string{"Agricultural Engineering", "Biosystems Engineering"},
		Description: "Modern facility dedicated to agricultural and biosystems engineering research and education.",
		Hours:       "Mon-Fri: 7:00am-10:00pm",
		Capacity:    "1,500 students", YearBuilt: "2013", Floors: 4,
		Coordinates: at(65, 70),
	},
	{
		Key: "state-gym", Name: "State Gymnasium", Code: "STG", Category: models.CategoryAthletics,
		Departments: []string{"Recreation Services", "Fitness Programs"},
		Description: "Comprehensive fitness and recreation facility offering various sports and wellness programs.",
		Hours:       "Mon-Fri: 5:30am-11:00pm, Sat-Sun: 8:00am-10:00pm",
		Capacity:    "1,000+ users daily", YearBuilt: "1975", Floors: 3,
		Coordinates: at(30, 76),
	},
}

// Seed inserts the buildings in seed, skipping keys that already exist.
func (c *Catalog) Seed(ctx context.Context, seed []CreateRequest) (created, skipped int, err error) {
	for _, req := range seed {
		if req.Gallery == nil && req.Image == "" {
			req.Gallery = []string{c.opts.PlaceholderImage}
		}
		_, err := c.Create(ctx, req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, errs.ErrDuplicateKey):
			skipped++
		default:
			return created, skipped, err
		}
	}
	c.log.Info("seed complete", zap.Int("created", created), zap.Int("skipped", skipped), zap.Int("total", len(seed)))
	return created, skipped, nil
}
