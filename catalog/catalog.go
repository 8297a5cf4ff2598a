// Package catalog holds the static course and blog listings shown to
// anonymous visitors.
package catalog

import (
	"fmt"
	"slices"

	"github.com/jrsteele09/fewv-learns/internal/errors"
)

type Course struct {
	ID          int
	Name        string
	Price       float64
	Description string
}

// CourseDetail is the marketing page of a course.
type CourseDetail struct {
	ID            int
	Title         string
	Syllabus      string
	InstructorBio string
	Prerequisites string
	Price         float64
	Duration      string
	Level         string
	Description   string
}

type Blog struct {
	ID          string
	Title       string
	Description string
	Tags        []string
}

// CartItem is one selected course. Quantity is always 1 from the course form.
type CartItem struct {
	ID       int
	Quantity int
}

var courses = []Course{
	{ID: 1, Name: "Learn About Kafka and Node.js", Price: 30, Description: "Master message streaming with Kafka and Node.js integration"},
	{ID: 2, Name: "React, but with webpack", Price: 20, Description: "Deep dive into React and webpack configuration"},
	{ID: 3, Name: "Learn About Terraform in Depth", Price: 20, Description: "Infrastructure as Code with Terraform"},
	{ID: 4, Name: "Kubernetes and Docker for deployment", Price: 30, Description: "Container orchestration and deployment strategies"},
	{ID: 5, Name: "Create your own Serverless web app", Price: 40, Description: "Build scalable serverless applications"},
}

var details = map[int]CourseDetail{
	1: {
		ID:            1,
		Title:         "Real-Time Data Streaming with Kafka & Node.js",
		Syllabus:      "Learn about Kafka Architecture, Use Kafkajs with Node.js, Build real-time streaming applications",
		InstructorBio: "John Doe is a seasoned Kafka expert with over 8 years of experience in distributed systems and real-time data processing.",
		Prerequisites: "A little bit of Node.js knowledge, and your laptop. Yes, just that!",
		Price:         30,
		Duration:      "3h 45m",
		Level:         "Intermediate",
		Description:   "Master real-time data streaming with Apache Kafka and Node.js integration.",
	},
	2: {
		ID:            2,
		Title:         "Create React App with Webpack",
		Syllabus:      "Enhance your app, advanced state management, custom webpack configuration, optimization techniques",
		InstructorBio: "Jane Smith is a leading React developer with expertise in modern frontend architecture and performance optimization.",
		Prerequisites: "No Prerequisites. Let's just dive in!",
		Price:         20,
		Duration:      "2h 30m",
		Level:         "Intermediate",
		Description:   "Deep dive into React and webpack configuration for professional applications.",
	},
	3: {
		ID:            3,
		Title:         "Learn about Terraform in Detail",
		Syllabus:      "Learn to create CI/CD pipelines, automate the deployment process, infrastructure as code best practices",
		InstructorBio: "Mike Johnson has over 10 years of Terraform experience and has helped numerous companies migrate to infrastructure as code.",
		Prerequisites: "Just you and your laptop.",
		Price:         20,
		Duration:      "4h 15m",
		Level:         "Intermediate",
		Description:   "Master infrastructure as code with Terraform and automate your deployments.",
	},
	4: {
		ID:            4,
		Title:         "Kubernetes and Docker for Deployment",
		Syllabus:      "Create clusters, learn the intricacies of K8s, container orchestration, deployment strategies",
		InstructorBio: "Emily Davis has built numerous containerized applications and specializes in Kubernetes architecture and best practices.",
		Prerequisites: "A basic knowledge about Node.js. Just that.",
		Price:         30,
		Duration:      "5h 20m",
		Level:         "Advanced",
		Description:   "Master container orchestration with Kubernetes and Docker for production deployments.",
	},
	5: {
		ID:            5,
		Title:         "Create Your First Serverless Web App",
		Syllabus:      "Use various AWS products like: S3 bucket, EC2, Lambda, API Gateway, and many more!",
		InstructorBio: "Chris Wilson is an AWS guru with multiple certifications and years of experience building scalable serverless applications.",
		Prerequisites: "AWS account required.",
		Price:         40,
		Duration:      "6h 10m",
		Level:         "Intermediate",
		Description:   "Build scalable serverless applications using AWS services and best practices.",
	},
}

var blogs = []Blog{
	{ID: "generate-jwt", Title: "FEWV Seconds of Learning How to Generate a JWT?", Description: "Learn how to generate a JSON Web Token (JWT) in just a few seconds.", Tags: []string{"React", "JavaScript"}},
	{ID: "learn-docker", Title: "FEWV Seconds of Learning How to Containerize?", Description: "Learn how to containerize your applications using Docker.", Tags: []string{"Docker", "Node.js"}},
	{ID: "learn-figma-react", Title: "FEWV Seconds of Learning Convert Figma to React?", Description: "Learn how to convert Figma designs to React components.", Tags: []string{"Figma", "React.js"}},
	{ID: "k8s-basics", Title: "Learn Kubernetes Basics in Just a Few Seconds", Description: "Get started with Kubernetes and learn the basics in just a few seconds.", Tags: []string{"K8s", "Node.js"}},
}

// Courses returns a copy of the course list in display order.
func Courses() []Course {
	return slices.Clone(courses)
}

func CourseByID(id int) (Course, error) {
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, fmt.Errorf("%w: course %d", errors.ErrNotFound, id)
}

func Detail(id int) (CourseDetail, error) {
	d, ok := details[id]
	if !ok {
		return CourseDetail{}, fmt.Errorf("%w: course %d", errors.ErrNotFound, id)
	}
	return d, nil
}

func Blogs() []Blog {
	return slices.Clone(blogs)
}

func BlogByID(id string) (Blog, error) {
	for _, b := range blogs {
		if b.ID == id {
			return b, nil
		}
	}
	return Blog{}, fmt.Errorf("%w: blog %q", errors.ErrNotFound, id)
}

// Total prices a cart. Unknown course ids contribute nothing.
func Total(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		if c, err := CourseByID(item.ID); err == nil {
			total += c.Price * float64(item.Quantity)
		}
	}
	return total
}

// Names resolves course ids to names, skipping unknown ids.
func Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, err := CourseByID(id); err == nil {
			names = append(names, c.Name)
		}
	}
	return names
}
