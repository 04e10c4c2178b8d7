package snippet

// catalog is the built-in snippet set. Snippets are short, idiomatic pieces
// of real-looking code; indentation uses four spaces so Tab input lines up.
var catalog = []Snippet{
	{
		ID:       "ts-1",
		Language: "typescript",
		Code: `function factorial(n: number): number {
    if (n <= 1) {
        return 1;
    }
    return n * factorial(n - 1);
}

const result = factorial(5);
console.log(result);`,
	},
	{
		ID:       "ts-2",
		Language: "typescript",
		Code: `interface User {
    id: number;
    name: string;
    email: string;
    isActive: boolean;
}

function createUser(name: string, email: string): User {
    return {
        id: Math.random(),
        name,
        email,
        isActive: true,
    };
}`,
	},
	{
		ID:       "ts-3",
		Language: "typescript",
		Code: `class Stack<T> {
    private items: T[] = [];

    push(item: T): void {
        this.items.push(item);
    }

    pop(): T | undefined {
        return this.items.pop();
    }
}`,
	},
	{
		ID:       "js-1",
		Language: "javascript",
		Code: `function bubbleSort(arr) {
    const n = arr.length;
    for (let i = 0; i < n; i++) {
        for (let j = 0; j < n - i - 1; j++) {
            if (arr[j] > arr[j + 1]) {
                [arr[j], arr[j + 1]] = [arr[j + 1], arr[j]];
            }
        }
    }
    return arr;
}`,
	},
	{
		ID:       "js-2",
		Language: "javascript",
		Code: `function debounce(func, delay) {
    let timeoutId;
    return function(...args) {
        clearTimeout(timeoutId);
        timeoutId = setTimeout(() => {
            func.apply(this, args);
        }, delay);
    };
}`,
	},
	{
		ID:       "py-1",
		Language: "python",
		Code: `def quicksort(arr):
    if len(arr) <= 1:
        return arr

    pivot = arr[len(arr) // 2]
    left = [x for x in arr if x < pivot]
    middle = [x for x in arr if x == pivot]
    right = [x for x in arr if x > pivot]

    return quicksort(left) + middle + quicksort(right)`,
	},
	{
		ID:       "py-2",
		Language: "python",
		Code: `def fibonacci(n):
    if n <= 1:
        return n

    prev, curr = 0, 1
    for _ in range(2, n + 1):
        prev, curr = curr, prev + curr

    return curr`,
	},
	{
		ID:       "rust-1",
		Language: "rust",
		Code: `fn binary_search<T: Ord>(arr: &[T], target: &T) -> Option<usize> {
    let mut low = 0;
    let mut high = arr.len();

    while low < high {
        let mid = low + (high - low) / 2;
        match arr[mid].cmp(target) {
            std::cmp::Ordering::Equal => return Some(mid),
            std::cmp::Ordering::Less => low = mid + 1,
            std::cmp::Ordering::Greater => high = mid,
        }
    }
    None
}`,
	},
	{
		ID:       "rust-2",
		Language: "rust",
		Code: `fn sum_even(numbers: &[i32]) -> i32 {
    numbers
        .iter()
        .filter(|n| *n % 2 == 0)
        .sum()
}`,
	},
	{
		ID:       "go-1",
		Language: "go",
		Code: `func reverse(s string) string {
    runes := []rune(s)
    for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
        runes[i], runes[j] = runes[j], runes[i]
    }
    return string(runes)
}`,
	},
	{
		ID:       "go-2",
		Language: "go",
		Code: `func worker(jobs <-chan int, results chan<- int) {
    for j := range jobs {
        results <- j * 2
    }
}`,
	},
	{
		ID:       "java-1",
		Language: "java",
		Code: `public static int gcd(int a, int b) {
    while (b != 0) {
        int temp = b;
        b = a % b;
        a = temp;
    }
    return a;
}`,
	},
	{
		ID:       "java-2",
		Language: "java",
		Code: `public boolean isPalindrome(String s) {
    int left = 0;
    int right = s.length() - 1;
    while (left < right) {
        if (s.charAt(left) != s.charAt(right)) {
            return false;
        }
        left++;
        right--;
    }
    return true;
}`,
	},
	{
		ID:       "cpp-1",
		Language: "cpp",
		Code: `int findMax(int arr[], int n) {
    int maxVal = arr[0];

    for (int i = 1; i < n; i++) {
        if (arr[i] > maxVal) {
            maxVal = arr[i];
        }
    }

    return maxVal;
}`,
	},
	{
		ID:       "cpp-2",
		Language: "cpp",
		Code: `void reverseString(std::string& s) {
    int start = 0;
    int end = s.length() - 1;

    while (start < end) {
        std::swap(s[start], s[end]);
        start++;
        end--;
    }
}`,
	},
}
