package prompt

// Prompt templates, keyed by (language, framework) in the store. Placeholders
// use the single-brace form {file_path} and {all_functions_code}; any
// doubled-brace variants are rewritten by NormalizeTemplate when the store
// is built.

const pythonGeneralTemplate = `You are given the source code of the top-level functions from the file {file_path}.

Write pytest unit tests covering these functions:
{all_functions_code}

Requirements:
- Generate one or more test functions per source function, named test_<function>.
- Cover the happy path and at least one edge case per function.
- Mock non-deterministic calls (random, uuid4, datetime.now, network, filesystem) with unittest.mock.patch.
- Use plain asserts, no print statements.
- Return ONLY valid Python test code, no explanations and no markdown fences.`

const pythonFlaskTemplate = `You are given the Flask route handlers extracted from the file {file_path}.

from app import app

Write pytest unit tests for the following Flask routes using the test client fixture named "client" (provided by conftest.py):
{all_functions_code}

Requirements:
- Exercise each route with client.get()/client.post()/... as appropriate.
- Assert on status codes and response payloads.
- Use existing data from the application where possible; mock random.randint(), uuid4(), datetime.now() and other non-deterministic calls with unittest.mock.patch.
- Do not create a new Flask app; import it via "from app import app" or use the client fixture.
- Return ONLY valid Python test code, no explanations and no markdown fences.`

const pythonDjangoTemplate = `You are given the Django views extracted from the file {file_path}.

Write pytest-django unit tests for the following views:
{all_functions_code}

Requirements:
- Use the django test Client (fixture "client") and reverse() for URLs where possible.
- Mark database tests with @pytest.mark.django_db.
- Assert on status codes, template usage and response content.
- Return ONLY valid Python test code, no explanations and no markdown fences.`

const pythonFastAPITemplate = `You are given the FastAPI endpoints extracted from the file {file_path}.

Write pytest unit tests for the following endpoints using fastapi.testclient.TestClient (fixture "client" from conftest.py):
{all_functions_code}

Requirements:
- Exercise each endpoint with client.get()/client.post()/... including request bodies for POST/PUT.
- Assert on status codes and JSON payloads.
- Cover validation failures (422) where the endpoint takes a typed body.
- Return ONLY valid Python test code, no explanations and no markdown fences.`

// Authored with the doubled-brace placeholder form; normalized on load.
const tsAngularTemplate = `You are given the Angular component and service methods extracted from the file {{file_path}}.

Write Jasmine unit tests (Karma) for the following methods:
{{all_functions_code}}

Requirements:
- Use TestBed.configureTestingModule with the component/service under test.
- Mock injected dependencies with jasmine.createSpyObj.
- Use HttpClientTestingModule and HttpTestingController for HTTP calls.
- Return ONLY valid TypeScript spec code, no explanations and no markdown fences.`

const tsGeneralTemplate = `You are given the source code of the top-level functions from the file {file_path}.

Write Jasmine unit tests for these TypeScript functions:
{all_functions_code}

Requirements:
- One describe block per function, with it() cases for the happy path and edge cases.
- Mock external dependencies with jasmine spies.
- Return ONLY valid TypeScript spec code, no explanations and no markdown fences.`

// System messages sent alongside the built prompt, per framework.
var systemMessages = map[string]string{
	"flask":   "You are an expert Python Flask test engineer. Generate high-quality pytest unit tests for Flask applications using proper test client patterns. Mock external functions like random.randint(), uuid4(), datetime.now(), etc. using unittest.mock.patch. You MUST return ONLY valid Python test code. Do NOT provide explanations, comments, or ask questions.",
	"django":  "You are an expert Python Django test engineer. Generate high-quality pytest-django unit tests using proper Django test patterns. Return only the test code without any explanations or markdown formatting.",
	"fastapi": "You are an expert Python FastAPI test engineer. Generate high-quality pytest unit tests for FastAPI applications using TestClient. Return only the test code without any explanations or markdown formatting.",
	"angular": "You are an expert Angular test engineer. Generate high-quality Jasmine unit tests using TestBed and spies. Return only the spec code without any explanations or markdown formatting.",
	"general": "You are an expert test engineer. Generate high-quality unit tests. Return only the test code without any explanations or markdown formatting.",
}

// SystemMessage returns the system message for a framework, falling back to
// the general one.
func SystemMessage(framework string) string {
	if msg, ok := systemMessages[framework]; ok {
		return msg
	}
	return systemMessages["general"]
}
