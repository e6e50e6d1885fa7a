package catalog

import "context"

var builtinJobs = []Job{
	{
		ID:          "job1",
		Title:       "Software Engineer",
		Description: "Develop backend services with Python, Flask, SQL, and AWS. Experience with REST APIs and Docker is a plus.",
	},
	{
		ID:          "job2",
		Title:       "Data Scientist",
		Description: "Analyze large datasets using Python, R, machine learning, and statistics. Familiarity with cloud platforms like Azure or GCP.",
	},
	{
		ID:          "job3",
		Title:       "Frontend Developer",
		Description: "Build user interfaces with React, JavaScript, HTML, and CSS. Knowledge of responsive design and UI/UX principles.",
	},
	{
		ID:          "job4",
		Title:       "Cloud Architect",
		Description: "Design and implement scalable cloud solutions on AWS, Azure, or Google Cloud. Expertise in Kubernetes, Docker, and CI/CD.",
	},
	{
		ID:          "job5",
		Title:       "Project Manager",
		Description: "Lead agile development teams, manage sprints, and ensure successful project delivery. Strong communication and leadership skills.",
	},
}

// BuiltinSource serves the postings compiled into the binary.
type BuiltinSource struct{}

func (BuiltinSource) Name() string { return "builtin" }

func (BuiltinSource) Load(context.Context) ([]Job, error) {
	jobs := make([]Job, len(builtinJobs))
	copy(jobs, builtinJobs)
	return jobs, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtinJobs)
	if err != nil {
		panic(err)
	}
	return c
}
